package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"posterlab/internal/providers/image"
	"posterlab/internal/storage"
	"posterlab/pkg/zip"
)

type kitFile struct {
	name string
	data []byte
}

// kitCommand runs the whole pipeline once and exports the concept, poster and
// song side by side. A failed poster is reported but does not abort the kit.
func (a *app) kitCommand() *cobra.Command {
	var (
		f         filterFlags
		outDir    string
		preferred string
		asZip     bool
	)
	cmd := &cobra.Command{
		Use:   "kit",
		Short: "Generate a concept, poster and song and save them together",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			store, err := storage.NewFileStore(outDir)
			if err != nil {
				return usageError{msg: err.Error()}
			}
			ctx := cmd.Context()

			res := a.c.Concepts.Generate(ctx, f.request())
			c := res.Concept
			base := fmt.Sprintf("%s-%d", storage.Slug(c.Title), c.Seed)

			conceptJSON, err := indentJSON(c)
			if err != nil {
				return err
			}
			files := []kitFile{{name: "concept.json", data: conceptJSON}}
			img, imgErr := a.c.Images.Generate(ctx, image.GenerateInput{Concept: &c, Preferred: preferred})
			if imgErr == nil {
				data, mime, err := decodeDataURI(img.ImageURL)
				if err != nil {
					return err
				}
				files = append(files, kitFile{name: "poster" + extensionFor(mime), data: data})
			} else {
				a.out.Warn("poster skipped: " + imgErr.Error())
			}
			rec := a.c.Songs.Recommend(ctx, &c)
			songJSON, err := indentJSON(rec.Recommendation)
			if err != nil {
				return err
			}
			files = append(files, kitFile{name: "song.json", data: songJSON})

			var written []string
			if asZip {
				assets := make([]zip.Asset, 0, len(files))
				for _, kf := range files {
					assets = append(assets, zip.Asset{Filename: base + "/" + kf.name, Data: kf.data})
				}
				archive, err := zip.ArchiveAssets(assets)
				if err != nil {
					return err
				}
				key, err := store.Write(ctx, base+".zip", archive)
				if err != nil {
					return err
				}
				written = append(written, store.Path(key))
			} else {
				for _, kf := range files {
					key, err := store.Write(ctx, base+"/"+kf.name, kf.data)
					if err != nil {
						return err
					}
					written = append(written, store.Path(key))
				}
			}

			if a.flags.JSON {
				payload := map[string]any{
					"success":       true,
					"title":         c.Title,
					"files":         written,
					"conceptSource": res.Source,
					"songSource":    rec.Source,
				}
				if imgErr != nil {
					payload["posterError"] = imgErr.Error()
				}
				return a.out.EmitJSON(payload)
			}
			a.out.Print(a.out.Bold(c.Title) + a.out.Gray(" ("+string(c.Decade)+", "+string(c.Genre)+")"))
			for _, w := range written {
				a.out.Print(a.out.Green("wrote ") + w)
			}
			return nil
		},
	}
	bindFilterFlags(cmd.Flags(), &f)
	fs := cmd.Flags()
	fs.StringVarP(&outDir, "out-dir", "d", ".", "directory the kit is written to")
	fs.StringVar(&preferred, "generator", "", "preferred image provider: imagen or openai")
	fs.BoolVar(&asZip, "zip", false, "write a single zip archive instead of a folder")
	return cmd
}

func extensionFor(mime string) string {
	switch mime {
	case "image/jpeg":
		return ".jpg"
	case "image/webp":
		return ".webp"
	default:
		return ".png"
	}
}

func indentJSON(v any) ([]byte, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encode: %w", err)
	}
	return append(data, '\n'), nil
}
