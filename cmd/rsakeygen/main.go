// Command rsakeygen draws a fresh RSA key pair and writes it to disk, in
// either the module's binary key format or an armored PEM-style variant.
package main

import (
	"fmt"
	"os"

	"github.com/urfave/cli"

	"github.com/relayforge/rsaforge/internal/cliutil"
	"github.com/relayforge/rsaforge/internal/entropy"
	"github.com/relayforge/rsaforge/internal/rsafile"
	"github.com/relayforge/rsaforge/internal/rsakey"
)

func main() {
	cli.HelpFlag = cli.BoolFlag{Name: "help, ?"}

	app := cli.NewApp()
	app.Name = "rsakeygen"
	app.Usage = "generate an RSA key pair in rsaforge's native or PEM-armored format"
	app.Version = "1.0.0"
	app.Flags = []cli.Flag{
		cli.IntFlag{Name: "bits, b", Value: rsakey.DefaultBits, Usage: "modulus width in bits, 768..262144, multiple of 256"},
		cli.IntFlag{Name: "threads, t", Value: rsafile.DefaultWorkers(), Usage: "number of concurrent generator workers"},
		cli.StringFlag{Name: "out, o", Value: "default", Usage: "output filename stem"},
		cli.BoolFlag{Name: "pem", Usage: "write PEM-armored output instead of binary"},
		cli.BoolFlag{Name: "nocolor", Usage: "disable colored status output"},
		cli.BoolFlag{Name: "debug, d", Usage: "print the generated key's field listing before exiting"},
	}
	app.Action = run

	if err := app.Run(os.Args); err != nil {
		cliutil.PrintErr(os.Stderr, "%s", err)
		os.Exit(cliutil.ExitCode(err))
	}
}

func run(c *cli.Context) error {
	if c.Bool("nocolor") {
		cliutil.DisableColor()
	}

	workers := c.Int("threads")
	if workers < 1 {
		workers = 1
	}
	if workers > rsakey.MaxWorkers {
		workers = rsakey.MaxWorkers
	}

	cfg := rsakey.GenerateConfig{Bits: c.Int("bits"), Workers: workers}
	if err := cfg.Validate(); err != nil {
		return err
	}

	ent, err := entropy.Open()
	if err != nil {
		return err
	}

	fmt.Fprintf(os.Stdout, "generating a %d-bit key pair with %d workers...\n", cfg.Bits, cfg.Workers)
	key, err := rsakey.Generate(cfg, ent)
	if err != nil {
		return err
	}

	pubPath, privPath, err := key.WriteFiles(c.String("out"), c.Bool("pem"))
	if err != nil {
		return err
	}

	cliutil.PrintOK(os.Stdout, "wrote %s and %s", pubPath, privPath)

	if c.Bool("debug") {
		rsafile.Tell(os.Stdout, key)
	}
	return nil
}
