package main

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/alecthomas/kingpin/v2"
	"gopkg.in/yaml.v3"

	"github.com/MKhiriev/go-layered-config/config"
	"github.com/MKhiriev/go-layered-config/internal/crypto"
	"github.com/MKhiriev/go-layered-config/internal/logger"
)

const stdio = "-"

var errNoKey = errors.New("no key: pass --key or set " + config.SecretKeyVar)

type cli struct {
	app *kingpin.Application
	out io.Writer
	log *logger.Logger

	key string

	encryptIn  string
	encryptOut string
	decryptIn  string
	decryptOut string

	dumpDir      string
	dumpEnv      string
	dumpPrefix   string
	dumpListKeys []string
	dumpFormat   string
}

func newCLI(out io.Writer, log *logger.Logger) *cli {
	c := &cli{
		app: kingpin.New("confcrypt", "Encrypt configuration secrets and inspect merged configuration"),
		out: out,
		log: log,
	}
	c.app.Terminate(nil)
	c.app.UsageWriter(out)
	c.app.ErrorWriter(out)

	c.app.Command("version", "Print build information").Action(c.version)
	c.app.Command("keygen", "Generate a new secrets encryption key").Action(c.keygen)

	encrypt := c.app.Command("encrypt", "Encrypt a secrets file").Action(c.encrypt)
	encrypt.Flag("key", "Base64 encryption key").Envar(config.SecretKeyVar).StringVar(&c.key)
	encrypt.Arg("input", "Plaintext file").Required().StringVar(&c.encryptIn)
	encrypt.Flag("output", "Output file, - for stdout (default: input + .enc)").Short('o').StringVar(&c.encryptOut)

	decrypt := c.app.Command("decrypt", "Decrypt a secrets file").Action(c.decrypt)
	decrypt.Flag("key", "Base64 encryption key").Envar(config.SecretKeyVar).StringVar(&c.key)
	decrypt.Arg("input", "Encrypted file").Required().StringVar(&c.decryptIn)
	decrypt.Flag("output", "Output file, - for stdout").Short('o').Default(stdio).StringVar(&c.decryptOut)

	dump := c.app.Command("dump", "Print the merged configuration tree").Action(c.dump)
	dump.Flag("dir", "Config directory (default: "+config.DirVar+" or "+config.DefaultDir+")").StringVar(&c.dumpDir)
	dump.Flag("env", "Environment: dev, stag or prod (default: "+config.EnvironmentVar+" or dev)").StringVar(&c.dumpEnv)
	dump.Flag("prefix", "Environment variable prefix").StringVar(&c.dumpPrefix)
	dump.Flag("list-key", "Key parsed as a comma separated list (repeatable)").StringsVar(&c.dumpListKeys)
	dump.Flag("format", "Structured file format").Default(string(config.FormatYAML)).
		EnumVar(&c.dumpFormat, string(config.FormatYAML), string(config.FormatJSON))

	return c
}

func run(args []string, out io.Writer, log *logger.Logger) error {
	_, err := newCLI(out, log).app.Parse(args)
	return err
}

func (c *cli) version(*kingpin.ParseContext) error {
	for _, v := range []*string{&buildVersion, &buildDate, &buildCommit} {
		if *v == "" {
			*v = "N/A"
		}
	}

	fmt.Fprintf(c.out, "Build version: %s\n", buildVersion)
	fmt.Fprintf(c.out, "Build date: %s\n", buildDate)
	fmt.Fprintf(c.out, "Build commit: %s\n", buildCommit)
	return nil
}

func (c *cli) keygen(*kingpin.ParseContext) error {
	key, err := crypto.GenerateKey()
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(c.out, key)
	return err
}

func (c *cli) cipher() (crypto.SecretCipher, error) {
	if c.key == "" {
		return nil, errNoKey
	}
	return crypto.NewSecretCipher(c.key)
}

func (c *cli) encrypt(*kingpin.ParseContext) error {
	sc, err := c.cipher()
	if err != nil {
		return err
	}

	plaintext, err := os.ReadFile(c.encryptIn)
	if err != nil {
		return fmt.Errorf("read input: %w", err)
	}

	blob, err := sc.Encrypt(plaintext)
	if err != nil {
		return fmt.Errorf("encrypt %s: %w", c.encryptIn, err)
	}

	out := c.encryptOut
	if out == "" {
		out = c.encryptIn + ".enc"
	}
	if err := c.write(out, blob); err != nil {
		return err
	}

	c.log.Info().Str("input", c.encryptIn).Str("output", out).Msg("secrets encrypted")
	return nil
}

func (c *cli) decrypt(*kingpin.ParseContext) error {
	sc, err := c.cipher()
	if err != nil {
		return err
	}

	plaintext, err := sc.DecryptFile(c.decryptIn)
	if err != nil {
		return err
	}

	return c.write(c.decryptOut, plaintext)
}

func (c *cli) dump(*kingpin.ParseContext) error {
	opts := []config.Option{
		config.WithLogger(c.log.Logger),
		config.WithFormat(config.Format(c.dumpFormat)),
		config.WithPrefix(c.dumpPrefix),
		config.WithListParseKeys(c.dumpListKeys...),
	}
	if c.dumpDir != "" {
		opts = append(opts, config.WithDir(c.dumpDir))
	}
	if c.dumpEnv != "" {
		env, err := config.ParseEnvironment(c.dumpEnv)
		if err != nil {
			return err
		}
		opts = append(opts, config.WithEnvironment(env))
	}

	cfg, err := config.New(opts...)
	if err != nil {
		return err
	}

	for _, src := range cfg.Sources() {
		event := c.log.Info()
		if src.Status == config.StatusFailed {
			event = c.log.Warn().Err(src.Err)
		}
		event.Str("source", src.Name).Str("path", src.Path).Str("status", string(src.Status)).Msg("source")
	}

	enc := yaml.NewEncoder(c.out)
	enc.SetIndent(2)
	if err := enc.Encode(cfg.Tree().AllSettings()); err != nil {
		return fmt.Errorf("encode tree: %w", err)
	}
	return enc.Close()
}

func (c *cli) write(path string, data []byte) error {
	if path == stdio {
		_, err := c.out.Write(data)
		return err
	}

	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}
