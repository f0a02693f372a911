package main

import (
	"fmt"
	"io"
	"log"
	"os"
	"strings"

	"github.com/urfave/cli/v2"

	"github.com/griffnb/route-swag/internal/gen"
)

const (
	inputFlag           = "input"
	outputFlag          = "output"
	outputTypesFlag     = "outputTypes"
	basePathFlag        = "basePath"
	payloadTypeFlag     = "payloadType"
	acceptToProduceFlag = "acceptToProduce"
	pathPrefixSizeFlag  = "pathPrefixSize"
	quietFlag           = "quiet"
	debugFlag           = "debug"
)

var genFlags = []cli.Flag{
	&cli.BoolFlag{
		Name:    quietFlag,
		Aliases: []string{"q"},
		Usage:   "Make the logger quiet.",
	},
	&cli.StringFlag{
		Name:     inputFlag,
		Aliases:  []string{"i"},
		Usage:    "Route manifest file (JSON or YAML) describing settings and routes",
		Required: true,
	},
	&cli.StringFlag{
		Name:    outputFlag,
		Aliases: []string{"o"},
		Value:   "./docs",
		Usage:   "Output directory for all the generated files (swagger.json, swagger.yaml)",
	},
	&cli.StringFlag{
		Name:    outputTypesFlag,
		Aliases: []string{"ot"},
		Value:   "json,yaml",
		Usage:   "Output types of generated files (swagger.json, swagger.yaml) like json,yaml",
	},
	&cli.StringFlag{
		Name:  basePathFlag,
		Usage: "Base path stripped from route paths, overriding the manifest",
	},
	&cli.StringFlag{
		Name:  payloadTypeFlag,
		Usage: "Default payload encoding kind (json or form), overriding the manifest",
	},
	&cli.BoolFlag{
		Name:  acceptToProduceFlag,
		Usage: "Derive produces lists from Accept header enums",
	},
	&cli.IntFlag{
		Name:  pathPrefixSizeFlag,
		Usage: "Number of leading path segments used as the fallback tag, overriding the manifest",
	},
	&cli.BoolFlag{
		Name:  debugFlag,
		Usage: "Print verbose progress output",
	},
}

func genAction(ctx *cli.Context) error {
	outputTypes := strings.Split(ctx.String(outputTypesFlag), ",")
	if len(outputTypes) == 0 {
		return fmt.Errorf("no output types specified")
	}

	var logger *log.Logger
	if ctx.Bool(quietFlag) {
		logger = log.New(io.Discard, "", log.LstdFlags)
	} else {
		logger = log.New(os.Stderr, "", log.LstdFlags)
	}

	config := &gen.Config{
		InputFile:   ctx.String(inputFlag),
		OutputDir:   ctx.String(outputFlag),
		OutputTypes: outputTypes,
		Quiet:       ctx.Bool(quietFlag),
		Debug:       logger,
	}

	// Only flags the caller actually set override the manifest.
	if ctx.IsSet(basePathFlag) {
		v := ctx.String(basePathFlag)
		config.BasePath = &v
	}
	if ctx.IsSet(payloadTypeFlag) {
		v := ctx.String(payloadTypeFlag)
		config.PayloadType = &v
	}
	if ctx.IsSet(acceptToProduceFlag) {
		v := ctx.Bool(acceptToProduceFlag)
		config.AcceptToProduce = &v
	}
	if ctx.IsSet(pathPrefixSizeFlag) {
		v := ctx.Int(pathPrefixSizeFlag)
		config.PathPrefixSize = &v
	}

	return gen.New().Build(config)
}

func main() {
	app := cli.NewApp()
	app.Version = "v1.0.0"
	app.Usage = "Translate route descriptors into a Swagger document."
	app.Commands = []*cli.Command{
		{
			Name:    "gen",
			Aliases: []string{"g"},
			Usage:   "Generate swagger.json and swagger.yaml from a route manifest",
			Action:  genAction,
			Flags:   genFlags,
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}
