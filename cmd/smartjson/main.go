// smartjson is a small command-line front end to the smartjson codec.
//
//	smartjson [global flags] fmt [--compact] FILE
//	smartjson [global flags] validate --schema SCHEMA FILE
//	smartjson [global flags] cbor [--decode] [-o OUT] FILE
//
// FILE may be "-" for standard input. fmt re-emits a JSON document with
// sorted keys (null becomes "" on the way through). validate checks a JSON
// document against a YAML or JSONC schema file. cbor converts JSON to CBOR,
// or CBOR back to JSON with --decode.
package main

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/pflag"

	"github.com/reoring/smartjson"
	"github.com/reoring/smartjson/codec"
	"github.com/reoring/smartjson/schemafile"
)

func main() {
	if err := run(os.Args[1:], os.Stdin, os.Stdout, os.Stderr); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

var errUsage = errors.New("usage: smartjson [--log-level LEVEL] [--max-depth N] [--duplicate-keys ignore|warn|error] fmt|validate|cbor [flags] FILE")

func run(args []string, stdin io.Reader, stdout, stderr io.Writer) error {
	var (
		logLevel      string
		maxDepth      int
		duplicateKeys string
	)
	global := pflag.NewFlagSet("smartjson", pflag.ContinueOnError)
	global.SetOutput(stderr)
	global.SetInterspersed(false)
	global.StringVar(&logLevel, "log-level", "warn", "log level: debug, info, warn or error")
	global.IntVar(&maxDepth, "max-depth", 0, "maximum nesting depth (0 = default, negative = unlimited)")
	global.StringVar(&duplicateKeys, "duplicate-keys", "ignore", "duplicate JSON keys: ignore, warn or error")
	if err := global.Parse(args); err != nil {
		return err
	}
	if global.NArg() == 0 {
		return errUsage
	}

	level, err := parseLevel(logLevel)
	if err != nil {
		return err
	}
	dup, err := parseSeverity(duplicateKeys)
	if err != nil {
		return err
	}
	logger := slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: level}))
	c := smartjson.New(smartjson.Options{
		Logger:     logger,
		MaxDepth:   maxDepth,
		Strictness: smartjson.Strictness{OnDuplicateKey: dup},
	})

	sub, rest := global.Arg(0), global.Args()[1:]
	switch sub {
	case "fmt":
		return fmtCommand(c, rest, stdin, stdout, stderr)
	case "validate":
		return validateCommand(c, rest, stdin, stdout, stderr)
	case "cbor":
		return cborCommand(c, rest, stdin, stdout, stderr)
	}
	return fmt.Errorf("unknown command %q\n%v", sub, errUsage)
}

func fmtCommand(c *smartjson.Codec, args []string, stdin io.Reader, stdout, stderr io.Writer) error {
	var compact bool
	fs := pflag.NewFlagSet("fmt", pflag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.BoolVar(&compact, "compact", false, "single-line output")
	if err := fs.Parse(args); err != nil {
		return err
	}
	data, err := readInput(fs, stdin)
	if err != nil {
		return err
	}
	node, err := c.Deserialize(data)
	if err != nil {
		return err
	}
	out, err := c.Serialize(node, smartjson.SerializeOpt{Pretty: !compact})
	if err != nil {
		return err
	}
	return writeLine(stdout, out)
}

func validateCommand(c *smartjson.Codec, args []string, stdin io.Reader, stdout, stderr io.Writer) error {
	var schemaPath string
	fs := pflag.NewFlagSet("validate", pflag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.StringVarP(&schemaPath, "schema", "s", "", "schema file (.yaml, .yml, .json or .jsonc)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if schemaPath == "" {
		return errors.New("validate: --schema is required")
	}
	schema, err := schemafile.Load(schemaPath)
	if err != nil {
		return err
	}
	data, err := readInput(fs, stdin)
	if err != nil {
		return err
	}
	if _, err := c.Deserialize(data, smartjson.DeserializeOpt{Schema: schema}); err != nil {
		return err
	}
	_, err = fmt.Fprintln(stdout, "ok")
	return err
}

func cborCommand(c *smartjson.Codec, args []string, stdin io.Reader, stdout, stderr io.Writer) error {
	var (
		decode bool
		output string
	)
	fs := pflag.NewFlagSet("cbor", pflag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.BoolVarP(&decode, "decode", "d", false, "convert CBOR input to JSON")
	fs.StringVarP(&output, "output", "o", "", "write to this file instead of stdout")
	if err := fs.Parse(args); err != nil {
		return err
	}
	data, err := readInput(fs, stdin)
	if err != nil {
		return err
	}
	var out []byte
	if decode {
		node, err := codec.UnmarshalCBOR(c, data)
		if err != nil {
			return err
		}
		if out, err = c.Serialize(node, smartjson.SerializeOpt{Pretty: true}); err != nil {
			return err
		}
		out = append(out, '\n')
	} else {
		node, err := c.Deserialize(data)
		if err != nil {
			return err
		}
		if out, err = codec.MarshalCBOR(c, node); err != nil {
			return err
		}
	}
	if output == "" {
		_, err = stdout.Write(out)
		return err
	}
	if err := os.WriteFile(output, out, 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", output, err)
	}
	return nil
}

func readInput(fs *pflag.FlagSet, stdin io.Reader) ([]byte, error) {
	if fs.NArg() != 1 {
		return nil, fmt.Errorf("%s: expected exactly one FILE argument, got %d", fs.Name(), fs.NArg())
	}
	path := fs.Arg(0)
	if path == "-" {
		return io.ReadAll(stdin)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	return data, nil
}

func writeLine(w io.Writer, b []byte) error {
	if _, err := w.Write(b); err != nil {
		return err
	}
	_, err := io.WriteString(w, "\n")
	return err
}

func parseLevel(s string) (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(s)); err != nil {
		return 0, fmt.Errorf("invalid --log-level %q", s)
	}
	return level, nil
}

func parseSeverity(s string) (smartjson.Severity, error) {
	switch strings.ToLower(s) {
	case "ignore":
		return smartjson.Ignore, nil
	case "warn":
		return smartjson.Warn, nil
	case "error", "reject":
		return smartjson.Reject, nil
	}
	return 0, fmt.Errorf("invalid --duplicate-keys %q", s)
}
