package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path"
	"path/filepath"

	"github.com/urfave/cli/v2"

	"github.com/solderinua-oss/solder-warehouse/internal/app"
	"github.com/solderinua-oss/solder-warehouse/internal/domain"
)

type builder func(ctx context.Context) (*app.App, error)

type ingestFileFunc func(a *app.App) func(ctx context.Context, path string) (*domain.IngestResult, error)

func newCLI(build builder, scratchDir string) *cli.App {
	return &cli.App{
		Name:  "warehouse",
		Usage: "Ingest warehouse exports and print reports as JSON",
		Commands: []*cli.Command{
			{
				Name:  "ingest-stock",
				Usage: "Upsert a stock export into the catalog",
				Flags: sourceFlags(),
				Action: withApp(build, ingestAction(scratchDir, func(a *app.App) func(context.Context, string) (*domain.IngestResult, error) {
					return a.Ingest.IngestStockFile
				})),
			},
			{
				Name:  "ingest-sales",
				Usage: "Rebuild the sale ledger from an order export",
				Flags: sourceFlags(),
				Action: withApp(build, ingestAction(scratchDir, func(a *app.App) func(context.Context, string) (*domain.IngestResult, error) {
					return a.Ingest.IngestSalesFile
				})),
			},
			{
				Name:  "objects",
				Usage: "List archived uploads in object storage",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "prefix", Usage: "Key prefix, e.g. sales/2024-03-01"},
				},
				Action: withApp(build, func(c *cli.Context, a *app.App) error {
					if a.Objects == nil {
						return errors.New("object storage is not enabled (STORAGE_ENABLED)")
					}
					objects, err := a.Objects.ListObjects(c.Context, c.String("prefix"))
					if err != nil {
						return err
					}
					return printJSON(c, objects)
				}),
			},
			{
				Name:  "products",
				Usage: "List the catalog",
				Action: withApp(build, func(c *cli.Context, a *app.App) error {
					products, err := a.Warehouse.ListProducts(c.Context)
					if err != nil {
						return err
					}
					return printJSON(c, products)
				}),
			},
			{
				Name:  "clear-products",
				Usage: "Delete every product; the sale ledger is kept",
				Action: withApp(build, func(c *cli.Context, a *app.App) error {
					n, err := a.Ingest.ClearCatalog(c.Context)
					if err != nil {
						return err
					}
					return printJSON(c, map[string]any{"message": "Склад очищено", "deleted": n})
				}),
			},
			{
				Name:  "sales",
				Usage: "List the sale ledger, newest first",
				Action: withApp(build, func(c *cli.Context, a *app.App) error {
					events, err := a.Warehouse.ListSales(c.Context)
					if err != nil {
						return err
					}
					return printJSON(c, events)
				}),
			},
			{
				Name:  "stats",
				Usage: "Profit attribution over the ledger",
				Action: withApp(build, func(c *cli.Context, a *app.App) error {
					stats, err := a.Warehouse.GetStats(c.Context)
					if err != nil {
						return err
					}
					return printJSON(c, stats)
				}),
			},
			{
				Name:  "capital",
				Usage: "Capital at rest by owner",
				Action: withApp(build, func(c *cli.Context, a *app.App) error {
					split, err := a.Warehouse.GetCapitalSplit(c.Context)
					if err != nil {
						return err
					}
					return printJSON(c, split)
				}),
			},
			{
				Name:  "analyze",
				Usage: "Inventory control report",
				Flags: []cli.Flag{
					&cli.BoolFlag{Name: "alerts", Usage: "Only items that need reordering"},
					&cli.IntFlag{Name: "top", Usage: "Only the N items with the highest PVS"},
				},
				Action: withApp(build, func(c *cli.Context, a *app.App) error {
					switch {
					case c.Bool("alerts"):
						items, err := a.Warehouse.Alerts(c.Context)
						if err != nil {
							return err
						}
						return printJSON(c, items)
					case c.Int("top") > 0:
						items, err := a.Warehouse.TopByPVS(c.Context, c.Int("top"))
						if err != nil {
							return err
						}
						return printJSON(c, items)
					default:
						report, err := a.Warehouse.AnalyzeInventory(c.Context)
						if err != nil {
							return err
						}
						return printJSON(c, report)
					}
				}),
			},
		},
	}
}

func sourceFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{Name: "file", Aliases: []string{"f"}, Usage: "Local .xlsx or .csv export"},
		&cli.StringFlag{Name: "object", Usage: "Object storage key of the export"},
	}
}

func withApp(build builder, fn func(c *cli.Context, a *app.App) error) cli.ActionFunc {
	return func(c *cli.Context) error {
		a, err := build(c.Context)
		if err != nil {
			return err
		}
		defer a.Close()
		return fn(c, a)
	}
}

func ingestAction(scratchDir string, pick ingestFileFunc) func(c *cli.Context, a *app.App) error {
	return func(c *cli.Context, a *app.App) error {
		file, object := c.String("file"), c.String("object")
		if (file == "") == (object == "") {
			return errors.New("exactly one of --file or --object is required")
		}

		if object != "" {
			if a.Objects == nil {
				return errors.New("object storage is not enabled (STORAGE_ENABLED)")
			}
			if err := os.MkdirAll(scratchDir, 0o755); err != nil {
				return fmt.Errorf("create scratch dir: %w", err)
			}
			dir, err := os.MkdirTemp(scratchDir, "object-*")
			if err != nil {
				return fmt.Errorf("create scratch dir: %w", err)
			}
			defer os.RemoveAll(dir)

			file = filepath.Join(dir, path.Base(object))
			if err := a.Objects.DownloadObject(c.Context, object, file); err != nil {
				return err
			}
		}

		res, err := pick(a)(c.Context, file)
		if err != nil {
			return err
		}
		return printJSON(c, res)
	}
}

func printJSON(c *cli.Context, v any) error {
	enc := json.NewEncoder(c.App.Writer)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	return enc.Encode(v)
}
