// Package app wires configuration, logging, telemetry and file access for
// the command line tools.
//
//	a, err := app.NewApplication("taf2trf", *configPath, os.Stderr)
//	if err != nil {
//	    return err
//	}
//	defer a.Close(ctx)
//
//	taf, inputs, err := a.LoadTAF(ctx)
package app
