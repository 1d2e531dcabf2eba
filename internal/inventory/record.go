package inventory

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

// MaxAttachments is the hard upper bound of photos per record.
const MaxAttachments = 3

// Form carries the record fields at capture time. PhotoURLs/PhotoPaths hold
// already-uploaded attachments; blobs pending upload live outside the form
// (in the draft arena or the durable queue).
type Form struct {
	Code             string   `json:"codigo"`
	Floor            string   `json:"piso"`
	ServiceArea      string   `json:"servicio"`
	SignalType       string   `json:"tipoSenal"`
	Typology         string   `json:"tipologia"`
	Material         string   `json:"material"`
	GraphicMaterial  string   `json:"materialInfo"`
	Width            float64  `json:"ancho"`
	Length           float64  `json:"largo"`
	Thickness        float64  `json:"espesor"`
	Illuminated      bool     `json:"tieneIluminacion"`
	IlluminationSpec string   `json:"especificacionIluminacion"`
	Quantity         int      `json:"cantidad"`
	PhotoURLs        []string `json:"photoUrls"`
	PhotoPaths       []string `json:"photoPaths"`
}

// Record is the canonical persisted entity. Once written to the remote
// store it is immutable except for administrative deletion.
type Record struct {
	Form
	StoreID         string    `json:"id,omitempty"`
	Date            string    `json:"fecha"`
	SubmittedBy     string    `json:"responsable"`
	ServerTimestamp time.Time `json:"timestamp,omitzero"`
}

// requiredFields maps the validated subset to its wire names, which are
// also what users see in validation messages.
var requiredFields = []struct {
	name  string
	value func(Form) string
}{
	{"piso", func(f Form) string { return f.Floor }},
	{"servicio", func(f Form) string { return f.ServiceArea }},
	{"tipoSenal", func(f Form) string { return f.SignalType }},
	{"tipologia", func(f Form) string { return f.Typology }},
	{"material", func(f Form) string { return f.Material }},
}

// MissingRequired returns the wire names of required fields that are empty
// after trimming, in a stable order.
func MissingRequired(f Form) []string {
	var missing []string
	for _, field := range requiredFields {
		if strings.TrimSpace(field.value(f)) == "" {
			missing = append(missing, field.name)
		}
	}
	return missing
}

// ClampQuantity floors a quantity at 1.
func ClampQuantity(n int) int {
	if n < 1 {
		return 1
	}
	return n
}

// NormalizeQuantity parses free-form quantity input and normalizes it to
// max(1, floor(n)). Unparseable input normalizes to 1.
func NormalizeQuantity(raw string) int {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 1
	}
	value, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsNaN(value) || math.IsInf(value, 0) {
		return 1
	}
	return ClampQuantity(int(math.Floor(value)))
}

// NewBusinessCode derives a short display code from the capture time, the
// same shape the original data set uses (ROT- plus the last four digits of
// the unix-millisecond clock). Codes may collide across records by design;
// they are a display/grouping key, not a uniqueness constraint.
func NewBusinessCode(t time.Time) string {
	return fmt.Sprintf("ROT-%04d", t.UnixMilli()%10000)
}

// CaptureDate formats a local capture time the way records display it.
func CaptureDate(t time.Time) string {
	return t.Format("02/01/2006")
}
