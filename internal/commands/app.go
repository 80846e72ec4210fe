// Package commands implements the headless yousum command line.
package commands

import (
	"github.com/urfave/cli/v2"

	"yousum/internal/config"
	"yousum/internal/domain"
)

// NewApp builds the yousum command tree.
func NewApp() *cli.App {
	formatFlag := &cli.StringFlag{
		Name:    "format",
		Aliases: []string{"f"},
		Value:   "text",
		Usage:   "output format: text, json or yaml",
	}
	languageFlag := &cli.StringFlag{
		Name:    "language",
		Aliases: []string{"l"},
		Usage:   "ISO language code, e.g. en or de",
	}
	settingFlags := []cli.Flag{
		&cli.StringFlag{
			Name:  "length",
			Usage: "summary length: " + string(domain.LengthShort) + ", " + string(domain.LengthMedium) + " or " + string(domain.LengthLong),
		},
		&cli.StringSliceFlag{
			Name:  "focus",
			Usage: "focus area, repeat or comma separate for several",
		},
		languageFlag,
	}

	return &cli.App{
		Name:  "yousum",
		Usage: "summarize and transcribe YouTube videos through a YouSum backend",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "config",
				Value: config.DefaultConfigPath(),
				Usage: "path to config.yaml",
			},
			&cli.StringFlag{
				Name:  "backend-url",
				Usage: "override backend.base_url",
			},
			&cli.StringFlag{
				Name:  "storage",
				Usage: "override storage.driver: json, sqlite or redis",
			},
			&cli.BoolFlag{
				Name:    "quiet",
				Aliases: []string{"q"},
				Usage:   "log errors only",
			},
		},
		Commands: []*cli.Command{
			{
				Name:      "summarize",
				Usage:     "generate a summary for a video",
				ArgsUsage: "<youtube-url>",
				Flags: append([]cli.Flag{
					formatFlag,
					&cli.BoolFlag{Name: "resolve-title", Usage: "read the video title from the watch page"},
				}, settingFlags...),
				Action: SummarizeAction,
			},
			{
				Name:      "transcript",
				Usage:     "fetch the transcript of a video",
				ArgsUsage: "<youtube-url>",
				Flags: []cli.Flag{
					formatFlag,
					languageFlag,
					&cli.BoolFlag{Name: "resolve-title", Usage: "read the video title from the watch page"},
				},
				Action: TranscriptAction,
			},
			{
				Name:  "settings",
				Usage: "show or change persisted summary settings",
				Subcommands: []*cli.Command{
					{
						Name:   "show",
						Usage:  "print the current settings",
						Flags:  []cli.Flag{formatFlag},
						Action: SettingsShowAction,
					},
					{
						Name:   "set",
						Usage:  "update and persist settings",
						Flags:  append([]cli.Flag{formatFlag}, settingFlags...),
						Action: SettingsSetAction,
					},
				},
			},
		},
	}
}
