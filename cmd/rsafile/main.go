// Command rsafile drives the file engine's five operations (encrypt,
// decrypt, sign, verify, tell) against a loaded RSA key.
package main

import (
	"fmt"
	"os"

	"github.com/urfave/cli"
	"golang.org/x/term"

	"github.com/relayforge/rsaforge/internal/cliutil"
	"github.com/relayforge/rsaforge/internal/entropy"
	"github.com/relayforge/rsaforge/internal/rsaerr"
	"github.com/relayforge/rsaforge/internal/rsafile"
	"github.com/relayforge/rsaforge/internal/rsakey"
)

func main() {
	cli.HelpFlag = cli.BoolFlag{Name: "help, ?"}

	app := cli.NewApp()
	app.Name = "rsafile"
	app.Usage = "encrypt, decrypt, sign, verify, or inspect a file with an rsaforge key"
	app.Version = "1.0.0"
	app.Flags = []cli.Flag{
		cli.BoolFlag{Name: "e", Usage: "encrypt mode"},
		cli.BoolFlag{Name: "d", Usage: "decrypt mode"},
		cli.BoolFlag{Name: "s", Usage: "sign mode"},
		cli.BoolFlag{Name: "v", Usage: "verify mode"},
		cli.BoolFlag{Name: "t", Usage: "tell mode (print key field listing)"},
		cli.StringFlag{Name: "i", Usage: "input file"},
		cli.StringFlag{Name: "o", Usage: "output file"},
		cli.StringFlag{Name: "k", Usage: "key file"},
		cli.StringFlag{Name: "g", Usage: "signature file (write for -s, read for -v)"},
		cli.BoolFlag{Name: "w", Usage: "overwrite existing output files"},
		cli.Float64Flag{Name: "latitude", Usage: "latitude to embed in encrypted/signed output"},
		cli.Float64Flag{Name: "longitude", Usage: "longitude to embed in encrypted/signed output"},
		cli.IntFlag{Name: "threads", Value: rsafile.DefaultWorkers(), Usage: "decrypt worker pool size"},
		cli.BoolFlag{Name: "nochinese", Usage: "disable CRT decryption and use m = c^d mod n directly"},
		cli.BoolFlag{Name: "nocolor", Usage: "disable colored status output"},
		cli.BoolFlag{Name: "debug", Usage: "print extra diagnostic detail"},
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

	modes := 0
	for _, m := range []string{"e", "d", "s", "v", "t"} {
		if c.Bool(m) {
			modes++
		}
	}
	if modes != 1 {
		return rsaerr.New(rsaerr.ValueError, "exactly one of -e, -d, -s, -v, -t is required")
	}

	keyPath := c.String("k")
	if keyPath == "" {
		return rsaerr.New(rsaerr.ValueError, "-k <keyfile> is required")
	}
	key, err := rsakey.LoadFile(keyPath)
	if err != nil {
		return err
	}

	if c.Bool("t") {
		rsafile.Tell(os.Stdout, key)
		return nil
	}

	sizing, err := rsafile.NewSizing(key.Bits)
	if err != nil {
		return err
	}

	ent, err := entropy.Open()
	if err != nil {
		return err
	}

	workers := c.Int("threads")
	if workers < 1 {
		workers = 1
	}
	cfg := rsafile.Config{
		Key:       key,
		Entropy:   ent,
		Latitude:  float32(c.Float64("latitude")),
		Longitude: float32(c.Float64("longitude")),
		Workers:   workers,
		NoChinese: c.Bool("nochinese"),
		Overwrite: c.Bool("w"),
	}

	switch {
	case c.Bool("e"):
		return runEncrypt(c, cfg, sizing)
	case c.Bool("d"):
		return runDecrypt(c, cfg, sizing)
	case c.Bool("s"):
		return runSign(c, cfg, sizing)
	case c.Bool("v"):
		return runVerify(c, cfg, sizing)
	}
	return nil
}

func openInput(path string) (*os.File, int64, error) {
	if path == "" {
		return nil, 0, rsaerr.New(rsaerr.ValueError, "-i <infile> is required")
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, 0, rsaerr.Wrap(rsaerr.KeyFileIO, "open input file", err)
	}
	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, 0, rsaerr.Wrap(rsaerr.KeyFileIO, "stat input file", err)
	}
	return f, info.Size(), nil
}

func createOutput(path string, overwrite bool) (*os.File, error) {
	if path == "" {
		return nil, rsaerr.New(rsaerr.ValueError, "output path is required")
	}
	if !overwrite {
		if _, err := os.Stat(path); err == nil {
			return nil, rsaerr.New(rsaerr.OutputExists, fmt.Sprintf("%s already exists, pass -w to overwrite", path))
		}
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, rsaerr.Wrap(rsaerr.KeyFileIO, "create output file", err)
	}
	return f, nil
}

func runEncrypt(c *cli.Context, cfg rsafile.Config, sizing rsafile.Sizing) error {
	in, size, err := openInput(c.String("i"))
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := createOutput(c.String("o"), cfg.Overwrite)
	if err != nil {
		return err
	}
	defer out.Close()

	crc, err := rsafile.Encrypt(cfg, sizing, in, size, out)
	if err != nil {
		return err
	}
	cliutil.PrintOK(os.Stdout, "encrypted %d bytes, crc32=%08x", size, crc)
	return nil
}

func runDecrypt(c *cli.Context, cfg rsafile.Config, sizing rsafile.Sizing) error {
	in, size, err := openInput(c.String("i"))
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := createOutput(c.String("o"), cfg.Overwrite)
	if err != nil {
		return err
	}
	defer out.Close()

	crc, ok, err := rsafile.Decrypt(cfg, sizing, in, size, out)
	if err != nil {
		return err
	}
	if !ok {
		return rsaerr.New(rsaerr.CrcMismatch, fmt.Sprintf("decrypted output failed its CRC check (crc32=%08x)", crc))
	}
	cliutil.PrintOK(os.Stdout, "decrypted, crc32=%08x verified", crc)
	return nil
}

func runSign(c *cli.Context, cfg rsafile.Config, sizing rsafile.Sizing) error {
	in, _, err := openInput(c.String("i"))
	if err != nil {
		return err
	}
	defer in.Close()

	sigPath := c.String("g")
	if sigPath == "" {
		return rsaerr.New(rsaerr.ValueError, "-g <signature-file> is required for sign mode")
	}
	out, err := createOutput(sigPath, cfg.Overwrite)
	if err != nil {
		return err
	}
	defer out.Close()

	if err := rsafile.Sign(cfg, sizing, in, out); err != nil {
		return err
	}
	cliutil.PrintOK(os.Stdout, "wrote signature to %s", sigPath)
	return nil
}

func runVerify(c *cli.Context, cfg rsafile.Config, sizing rsafile.Sizing) error {
	in, _, err := openInput(c.String("i"))
	if err != nil {
		return err
	}
	defer in.Close()

	sigPath := c.String("g")
	if sigPath == "" {
		return rsaerr.New(rsaerr.ValueError, "-g <signature-file> is required for verify mode")
	}
	sig, _, err := openInput(sigPath)
	if err != nil {
		return err
	}
	defer sig.Close()

	res, err := rsafile.Verify(cfg, sizing, in, sig)
	if err != nil {
		return err
	}
	if !res.OK {
		return rsaerr.New(rsaerr.HashMismatch, "signature does not match input")
	}

	width := terminalWidth()
	if width > 0 && c.Bool("debug") {
		fmt.Fprintf(os.Stdout, "%s\n", cliutil.Cyan(fmt.Sprintf("(terminal width %d columns)", width)))
	}
	cliutil.PrintOK(os.Stdout, "signature valid, signed at unix time %d (lat=%.4f lon=%.4f)", res.Time, res.Latitude, res.Longitude)
	return nil
}

// terminalWidth probes stdout's column width for the debug banner above,
// falling back to 0 (no banner) when stdout is not a terminal.
func terminalWidth() int {
	fd := int(os.Stdout.Fd())
	if !term.IsTerminal(fd) {
		return 0
	}
	w, _, err := term.GetSize(fd)
	if err != nil {
		return 0
	}
	return w
}
