package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"rotulo/internal/inventory"
	"rotulo/internal/submission"
)

func newCaptureCommand(ctx *commandContext) *cobra.Command {
	var (
		floor            string
		serviceArea      string
		signalType       string
		typology         string
		material         string
		graphicMaterial  string
		width            float64
		length           float64
		thickness        float64
		illuminated      bool
		illuminationSpec string
		quantity         string
		photos           []string
	)

	cmd := &cobra.Command{
		Use:   "capture",
		Short: "Capture one inventory record, online or offline",
		Long: `Capture validates the entry, normalizes its photos, and either writes the
record to the remote store (when reachable) or saves it to the local queue
for a later sync. Either way the record is durable once the command exits.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			actor, _, err := requireSession(ctx)
			if err != nil {
				return err
			}
			if len(photos) > inventory.MaxAttachments {
				return fmt.Errorf("at most %d photos per record (%d given)", inventory.MaxAttachments, len(photos))
			}

			store, err := ctx.openStore()
			if err != nil {
				return err
			}
			defer store.Close()

			network, err := ctx.probeReachability(cmd.Context())
			if err != nil {
				return err
			}
			coord, err := ctx.buildCoordinator(store, network)
			if err != nil {
				return err
			}

			draft := submission.NewDraft()
			draft.Form = inventory.Form{
				Floor:            floor,
				ServiceArea:      serviceArea,
				SignalType:       signalType,
				Typology:         typology,
				Material:         material,
				GraphicMaterial:  graphicMaterial,
				Width:            width,
				Length:           length,
				Thickness:        thickness,
				Illuminated:      illuminated,
				IlluminationSpec: illuminationSpec,
				Quantity:         inventory.NormalizeQuantity(quantity),
			}

			for _, photo := range photos {
				file, err := os.Open(photo)
				if err != nil {
					return fmt.Errorf("open photo %s: %w", photo, err)
				}
				_, attachErr := coord.AttachPhoto(cmd.Context(), draft, file)
				file.Close()
				if attachErr != nil {
					return fmt.Errorf("attach photo %s: %w", photo, attachErr)
				}
			}

			result, err := coord.Submit(cmd.Context(), draft, actor)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			switch result.Outcome {
			case submission.OutcomeStored:
				fmt.Fprintf(out, "Record %s stored remotely (id %s)\n", result.BusinessCode, result.StoreID)
			case submission.OutcomeQueued:
				fmt.Fprintf(out, "Record %s saved offline; it will upload on the next sync\n", result.BusinessCode)
			}
			return nil
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&floor, "floor", "", "Floor the sign is installed on (required)")
	flags.StringVar(&serviceArea, "service", "", "Hospital service or area (required)")
	flags.StringVar(&signalType, "signal-type", "", "Signal type (required)")
	flags.StringVar(&typology, "typology", "", "Sign typology (required)")
	flags.StringVar(&material, "material", "", "Base material (required)")
	flags.StringVar(&graphicMaterial, "graphic-material", "", "Graphic material details")
	flags.Float64Var(&width, "width", 0, "Width in centimeters")
	flags.Float64Var(&length, "length", 0, "Length in centimeters")
	flags.Float64Var(&thickness, "thickness", 0, "Thickness in millimeters")
	flags.BoolVar(&illuminated, "illuminated", false, "Whether the sign is illuminated")
	flags.StringVar(&illuminationSpec, "illumination-spec", "", "Illumination details")
	flags.StringVar(&quantity, "quantity", "1", "Unit count (floored, minimum 1)")
	flags.StringArrayVar(&photos, "photo", nil, "Photo file to attach (repeatable, up to 3)")
	return cmd
}
