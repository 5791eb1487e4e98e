package main

import (
	"encoding/hex"
	"flag"
	"fmt"
	"os"

	"github.com/rs/zerolog"
	"gopkg.in/yaml.v3"

	uperc "github.com/thebagchi/uper-go"
	"github.com/thebagchi/uper-go/lib/uper"
)

func main() {
	var (
		schemaFile = flag.String("schema", "", "YAML type description file")
		valueFile  = flag.String("value", "", "YAML value file to encode")
		data       = flag.String("data", "", "hex octets to decode")
		bits       = flag.Uint64("bits", 0, "exact bit count of the data, 8 times its length when omitted")
		verbose    = flag.Bool("verbose", false, "debug logging")
	)
	flag.Parse()

	log := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger()
	if !*verbose {
		log = log.Level(zerolog.InfoLevel)
	}

	if len(*schemaFile) == 0 {
		log.Fatal().Msg("schema file required")
	}
	schema, err := uperc.LoadSchema(*schemaFile)
	if err != nil {
		log.Fatal().Err(err).Str("file", *schemaFile).Msg("loading schema")
	}
	log.Debug().Str("name", schema.Name).Msg("schema loaded")

	switch {
	case len(*valueFile) != 0:
		if err := encode(schema, *valueFile); err != nil {
			log.Fatal().Err(err).Msg("encoding")
		}
	case len(*data) != 0:
		if err := decode(schema, *data, *bits); err != nil {
			log.Fatal().Err(err).Msg("decoding")
		}
	default:
		log.Fatal().Msg("either -value or -data required")
	}
}

func encode(schema *uperc.Schema, valueFile string) error {
	raw, err := os.ReadFile(valueFile)
	if err != nil {
		return err
	}
	var doc any
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return err
	}

	value := schema.New()
	if err := schema.Type.Bind(value, doc); err != nil {
		return err
	}
	octets, bits, err := uper.Encode(value)
	if err != nil {
		return err
	}
	fmt.Printf("%s %d\n", hex.EncodeToString(octets), bits)
	return nil
}

func decode(schema *uperc.Schema, data string, bits uint64) error {
	octets, err := hex.DecodeString(data)
	if err != nil {
		return err
	}
	if bits == 0 {
		bits = uint64(len(octets)) * 8
	}

	value, err := schema.Decode(octets, bits)
	if err != nil {
		return err
	}
	doc, err := schema.Type.Plain(value)
	if err != nil {
		return err
	}
	out, err := yaml.Marshal(doc)
	if err != nil {
		return err
	}
	os.Stdout.Write(out)
	return nil
}
