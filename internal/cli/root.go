// Package cli implements posterctl, which runs the concept, image and song
// pipelines in-process against the configured providers.
package cli

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"posterlab/internal/bootstrap"
	"posterlab/internal/concept"
	"posterlab/internal/domain"
	"posterlab/internal/infra"
	"posterlab/internal/providers/image"
	"posterlab/internal/song"
)

const version = "1.0.0"

// Exit codes returned by Execute.
const (
	ExitSuccess = 0
	ExitFailure = 1
	ExitUsage   = 2
)

type Options struct {
	Stdout     io.Writer
	Stderr     io.Writer
	Stdin      io.Reader
	LoadConfig func() (*infra.Config, error)
}

type globalFlags struct {
	JSON    bool
	NoColor bool
	Verbose bool
}

type usageError struct{ msg string }

func (e usageError) Error() string { return e.msg }

type app struct {
	opts  Options
	flags globalFlags
	out   *output
	c     *bootstrap.Container
}

// Execute runs posterctl with args and returns the process exit code.
func Execute(ctx context.Context, args []string, opts Options) int {
	if opts.Stdout == nil {
		opts.Stdout = os.Stdout
	}
	if opts.Stderr == nil {
		opts.Stderr = os.Stderr
	}
	if opts.Stdin == nil {
		opts.Stdin = os.Stdin
	}
	if opts.LoadConfig == nil {
		opts.LoadConfig = infra.LoadConfig
	}
	a := &app{opts: opts}
	root := a.rootCommand()
	root.SetArgs(args)
	root.SetOut(opts.Stdout)
	root.SetErr(opts.Stderr)

	err := root.ExecuteContext(ctx)
	if a.c != nil {
		_ = a.c.Close()
	}
	if err == nil {
		return ExitSuccess
	}
	var ue usageError
	if errors.As(err, &ue) {
		fmt.Fprintln(opts.Stderr, ue.msg)
		return ExitUsage
	}
	if a.out == nil {
		a.out = newOutput(opts.Stdout, opts.Stderr, outputOptions{NoColor: true})
	}
	a.out.Error("Error: " + err.Error())
	return ExitFailure
}

func (a *app) rootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:           "posterctl",
		Short:         "Generate horror and sci-fi film concepts, posters and soundtrack picks",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.setup(cmd.Context())
		},
	}
	bindGlobalFlags(root.PersistentFlags(), &a.flags)
	root.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return usageError{msg: err.Error()}
	})
	root.AddCommand(a.conceptCommand(), a.songCommand(), a.imageCommand(), a.kitCommand(), a.healthCommand())
	return root
}

func bindGlobalFlags(fs *pflag.FlagSet, g *globalFlags) {
	fs.BoolVar(&g.JSON, "json", false, "emit JSON instead of formatted text")
	fs.BoolVar(&g.NoColor, "no-color", false, "disable coloured output")
	fs.BoolVarP(&g.Verbose, "verbose", "v", false, "log provider activity to stderr")
}

func (a *app) setup(ctx context.Context) error {
	a.out = newOutput(a.opts.Stdout, a.opts.Stderr, outputOptions{JSON: a.flags.JSON, NoColor: a.flags.NoColor})
	cfg, err := a.opts.LoadConfig()
	if err != nil {
		return usageError{msg: err.Error()}
	}
	logger := infra.NewCLILogger(a.opts.Stderr, a.flags.Verbose)
	c, err := bootstrap.Build(ctx, cfg, &logger)
	if err != nil {
		return err
	}
	a.c = c
	return nil
}

type filterFlags struct {
	Genre    string
	Era      string
	Hardcore bool
}

func bindFilterFlags(fs *pflag.FlagSet, f *filterFlags) {
	fs.StringVarP(&f.Genre, "genre", "g", "any", "genre filter: any, horror, sci-fi, fusion")
	fs.StringVarP(&f.Era, "era", "e", "any", "era filter: any or a decade such as 1980s")
	fs.BoolVar(&f.Hardcore, "hardcore", false, "use the hardcore theme pools")
}

func (f filterFlags) request() concept.Request {
	return concept.Request{
		Genre:    domain.ParseGenreFilter(f.Genre),
		Era:      domain.ParseEraFilter(f.Era),
		Hardcore: f.Hardcore,
	}
}

func (a *app) conceptCommand() *cobra.Command {
	var f filterFlags
	cmd := &cobra.Command{
		Use:   "concept",
		Short: "Generate a film concept",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			res := a.c.Concepts.Generate(cmd.Context(), f.request())
			if a.flags.JSON {
				return a.out.EmitJSON(map[string]any{"success": true, "concept": res.Concept, "source": res.Source})
			}
			a.printConcept(res)
			return nil
		},
	}
	bindFilterFlags(cmd.Flags(), &f)
	return cmd
}

func (a *app) printConcept(res concept.Result) {
	c := res.Concept
	a.out.Print(a.out.Bold(c.Title))
	if c.Tagline != "" {
		a.out.Print(a.out.Yellow(c.Tagline))
	}
	a.out.Print("")
	a.out.Field("Genre", string(c.Genre))
	a.out.Field("Decade", string(c.Decade))
	a.out.Field("Style", string(c.RenderStyle))
	a.out.Field("Seed", fmt.Sprint(c.Seed))
	if c.VisualSpec != nil {
		a.out.Field("Subgenre", c.VisualSpec.Subgenre)
		a.out.Field("Palette", strings.Join(c.VisualSpec.Palette, " "))
		a.out.Field("Lighting", c.VisualSpec.Lighting)
	}
	a.out.Print("")
	a.out.Print(c.Synopsis)
	if res.Source == concept.SourceFallback {
		a.out.Warn("provider unavailable (" + res.FallbackReason + "); showing a fallback concept")
	}
}

func (a *app) songCommand() *cobra.Command {
	var (
		f    filterFlags
		path string
	)
	cmd := &cobra.Command{
		Use:   "song",
		Short: "Recommend a soundtrack song for a concept",
		Long:  "Recommend a song. The concept is read from --concept (use - for stdin); without it a fresh concept is generated from the filter flags.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			c, err := a.loadConcept(cmd.Context(), path, f)
			if err != nil {
				return err
			}
			res := a.c.Songs.Recommend(cmd.Context(), c)
			if a.flags.JSON {
				return a.out.EmitJSON(map[string]any{"success": true, "recommendation": res.Recommendation, "source": res.Source})
			}
			rec := res.Recommendation
			a.out.Print(a.out.Bold(rec.Title) + " " + a.out.Gray("by") + " " + rec.Artist + a.out.Gray(" ("+string(rec.Year)+")"))
			a.out.Print(rec.Reason)
			if res.Source == song.SourceFallback {
				a.out.Warn("provider unavailable (" + res.FallbackReason + "); showing a fallback pick")
			}
			return nil
		},
	}
	bindFilterFlags(cmd.Flags(), &f)
	cmd.Flags().StringVarP(&path, "concept", "c", "", "concept JSON file, or - for stdin")
	return cmd
}

func (a *app) imageCommand() *cobra.Command {
	var (
		f         filterFlags
		path      string
		visual    string
		preferred string
		outFile   string
	)
	cmd := &cobra.Command{
		Use:   "image",
		Short: "Generate a poster image",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			in := image.GenerateInput{VisualElements: visual, Preferred: preferred}
			if path != "" || visual == "" {
				c, err := a.loadConcept(cmd.Context(), path, f)
				if err != nil {
					return err
				}
				in.Concept = c
			}
			out, err := a.c.Images.Generate(cmd.Context(), in)
			if err != nil {
				return err
			}
			if outFile != "" {
				if err := writeDataURI(outFile, out.ImageURL); err != nil {
					return err
				}
			}
			if a.flags.JSON {
				payload := map[string]any{"success": true, "generator": out.Generator, "prompt": out.Prompt}
				if outFile == "" {
					payload["imageUrl"] = out.ImageURL
				} else {
					payload["file"] = outFile
				}
				return a.out.EmitJSON(payload)
			}
			a.out.Field("Generator", out.Generator)
			a.out.Field("Prompt", out.Prompt)
			if outFile != "" {
				a.out.Print(a.out.Green("wrote " + outFile))
			} else {
				a.out.Field("Image", fmt.Sprintf("data URI, %d bytes (use --out to save)", len(out.ImageURL)))
			}
			return nil
		},
	}
	bindFilterFlags(cmd.Flags(), &f)
	fs := cmd.Flags()
	fs.StringVarP(&path, "concept", "c", "", "concept JSON file, or - for stdin")
	fs.StringVar(&visual, "visual", "", "free-form visual elements instead of a concept")
	fs.StringVar(&preferred, "generator", "", "preferred image provider: imagen or openai")
	fs.StringVarP(&outFile, "out", "o", "", "write the decoded image to this file")
	return cmd
}

func (a *app) healthCommand() *cobra.Command {
	var probe bool
	cmd := &cobra.Command{
		Use:   "health",
		Short: "Show key status and optionally probe provider connectivity",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			method := http.MethodGet
			if probe {
				method = http.MethodPost
			}
			req := httptest.NewRequest(method, "/health", nil).WithContext(cmd.Context())
			rec := httptest.NewRecorder()
			a.c.Handler.ServeHTTP(rec, req)
			if rec.Code != http.StatusOK {
				return fmt.Errorf("health returned %d", rec.Code)
			}
			var body healthBody
			if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
				return fmt.Errorf("decode health: %w", err)
			}
			if a.flags.JSON {
				return a.out.EmitJSON(body)
			}
			a.printHealth(body)
			return nil
		},
	}
	cmd.Flags().BoolVarP(&probe, "probe", "p", false, "ping every provider")
	return cmd
}

type healthBody struct {
	Status      string `json:"status"`
	Environment string `json:"environment"`
	APIKeys     map[string]struct {
		Present     bool   `json:"present"`
		ValidFormat bool   `json:"validFormat"`
		Prefix      string `json:"prefix"`
		Source      string `json:"source"`
	} `json:"apiKeys"`
	Connectivity map[string]struct {
		OK        bool   `json:"ok"`
		LatencyMs int64  `json:"latencyMs"`
		Error     string `json:"error"`
	} `json:"connectivity,omitempty"`
}

func (a *app) printHealth(b healthBody) {
	a.out.Print(a.out.Bold("posterlab " + b.Status))
	for _, name := range []string{"anthropic", "gemini", "openai"} {
		k := b.APIKeys[name]
		switch {
		case !k.Present:
			a.out.Field(name, a.out.Gray("missing"))
		case !k.ValidFormat:
			a.out.Field(name, a.out.Yellow(k.Prefix+" unexpected format ("+k.Source+")"))
		default:
			a.out.Field(name, a.out.Green(k.Prefix+" ("+k.Source+")"))
		}
	}
	if len(b.Connectivity) == 0 {
		return
	}
	a.out.Print("")
	for name, p := range b.Connectivity {
		if p.OK {
			a.out.Field(name, a.out.Green(fmt.Sprintf("ok %dms", p.LatencyMs)))
		} else {
			a.out.Field(name, a.out.Red(p.Error))
		}
	}
}

// loadConcept reads a concept from path, or generates one from f when path
// is empty.
func (a *app) loadConcept(ctx context.Context, path string, f filterFlags) (*domain.Concept, error) {
	if path == "" {
		res := a.c.Concepts.Generate(ctx, f.request())
		return &res.Concept, nil
	}
	var r io.Reader
	if path == "-" {
		r = a.opts.Stdin
	} else {
		file, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("open concept: %w", err)
		}
		defer func() { _ = file.Close() }()
		r = file
	}
	raw, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read concept: %w", err)
	}
	// Accept both a bare concept and the {"concept": ...} envelope printed by
	// `posterctl concept --json`.
	var envelope struct {
		Concept *domain.Concept `json:"concept"`
	}
	if err := json.Unmarshal(raw, &envelope); err == nil && envelope.Concept != nil {
		return envelope.Concept, nil
	}
	var c domain.Concept
	if err := json.Unmarshal(raw, &c); err != nil {
		return nil, usageError{msg: "concept is not valid JSON: " + err.Error()}
	}
	return &c, nil
}

func decodeDataURI(uri string) ([]byte, string, error) {
	header, payload, ok := strings.Cut(uri, ";base64,")
	if !ok || !strings.HasPrefix(header, "data:") {
		return nil, "", errors.New("image is not a base64 data URI")
	}
	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return nil, "", fmt.Errorf("decode image: %w", err)
	}
	return data, strings.TrimPrefix(header, "data:"), nil
}

func writeDataURI(path, uri string) error {
	data, _, err := decodeDataURI(uri)
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write image: %w", err)
	}
	return nil
}
