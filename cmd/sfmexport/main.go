package main

import (
	"flag"
	"fmt"
	"os"
	"strconv"

	"github.com/EliCDavis/vector/vector3"
	"github.com/golang/glog"
	"github.com/google/uuid"
	"github.com/recolude/rap/format"
	"github.com/urfave/cli/v2"

	"github.com/recolude/sfm-export/nvm"
	"github.com/recolude/sfm-export/pointcloud"
	"github.com/recolude/sfm-export/recording"
	"github.com/recolude/sfm-export/sfm"
)

var reconstructionFlags = []cli.Flag{
	&cli.StringFlag{
		Name:     "reconstruction",
		Usage:    "path to openSFM reconstruction file",
		EnvVars:  []string{"SFMEXPORT_RECONSTRUCTION"},
		Required: true,
	},
	&cli.StringFlag{
		Name:    "tracks",
		Usage:   "path to openSFM tracks.csv, observations are omitted without it",
		EnvVars: []string{"SFMEXPORT_TRACKS"},
	},
	&cli.IntFlag{
		Name:  "index",
		Usage: "which reconstruction of the file to export",
		Value: 0,
	},
}

func outFlag(usage string) cli.Flag {
	return &cli.StringFlag{
		Name:     "out",
		Usage:    usage,
		Required: true,
	}
}

func withReconstruction(flags ...cli.Flag) []cli.Flag {
	return append(append([]cli.Flag{}, reconstructionFlags...), flags...)
}

func main() {
	app := &cli.App{
		Name:  "sfmexport",
		Usage: "Converts OpenSFM reconstruction data to NVM, PLY and RAP",
		Authors: []*cli.Author{
			{
				Name:  "Eli Davis",
				Email: "eli@recolude.com",
			},
		},
		Flags: []cli.Flag{
			&cli.IntFlag{
				Name:    "verbosity",
				Usage:   "log level for V logs",
				EnvVars: []string{"SFMEXPORT_VERBOSITY"},
			},
		},
		Before: func(c *cli.Context) error {
			if err := flag.Set("logtostderr", "true"); err != nil {
				return err
			}
			return flag.Set("v", strconv.Itoa(c.Int("verbosity")))
		},
		After: func(c *cli.Context) error {
			glog.Flush()
			return nil
		},
		Commands: []*cli.Command{
			{
				Name:  "nvm",
				Usage: "write an NVM_V3 file and its principal point offsets",
				Flags: withReconstruction(outFlag("path to nvm file")),
				Action: func(c *cli.Context) error {
					model, err := loadModel(c.String("reconstruction"), c.String("tracks"), c.Int("index"))
					if err != nil {
						return err
					}
					return nvm.Export(c.String("out"), model)
				},
			},
			{
				Name:  "ply",
				Usage: "write the sparse point cloud as binary PLY",
				Flags: withReconstruction(outFlag("path to ply file")),
				Action: func(c *cli.Context) error {
					model, err := loadModel(c.String("reconstruction"), c.String("tracks"), c.Int("index"))
					if err != nil {
						return err
					}

					f, err := os.Create(c.String("out"))
					if err != nil {
						return err
					}
					defer f.Close()

					return pointcloud.WritePLY(f, model)
				},
			},
			{
				Name:  "rap",
				Usage: "write the camera trajectory and point cloud as a RAP recording",
				Flags: withReconstruction(
					outFlag("path to rap file"),
					&cli.StringFlag{
						Name:  "mesh",
						Usage: "optional ply mesh or dense cloud to attach",
					},
					&cli.Float64Flag{
						Name:  "mesh-scale",
						Usage: "uniform scale applied to the attached mesh",
						Value: 1,
					},
					&cli.StringFlag{
						Name:  "id",
						Usage: "recording id, a random uuid when empty",
					},
				),
				Action: func(c *cli.Context) error {
					model, err := loadModel(c.String("reconstruction"), c.String("tracks"), c.Int("index"))
					if err != nil {
						return err
					}

					extra := make([]format.Binary, 0)
					if meshPath := c.String("mesh"); meshPath != "" {
						scale := c.Float64("mesh-scale")
						mesh, err := pointcloud.MeshFileToRapBinary(meshPath, vector3.New(scale, scale, scale))
						if err != nil {
							return err
						}
						extra = append(extra, mesh)
					}

					id := c.String("id")
					if id == "" {
						id = uuid.NewString()
					}

					rec, err := recording.FromReconstruction(id, "Open SFM", model, extra...)
					if err != nil {
						return err
					}

					f, err := os.Create(c.String("out"))
					if err != nil {
						return err
					}
					defer f.Close()

					return recording.Write(f, rec)
				},
			},
			{
				Name:  "summary",
				Usage: "print view, track and observation counts",
				Flags: withReconstruction(),
				Action: func(c *cli.Context) error {
					model, err := loadModel(c.String("reconstruction"), c.String("tracks"), c.Int("index"))
					if err != nil {
						return err
					}
					_, err = fmt.Fprintln(c.App.Writer, sfm.Summarize(model))
					return err
				},
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		glog.Error(err)
		glog.Flush()
		os.Exit(1)
	}
}
