// Command rotulo is the field CLI for hospital signage inventory capture.
// It records inventory entries with photos, keeps them durable while the
// device is offline, and syncs them to the remote store when connectivity
// allows.
package main
