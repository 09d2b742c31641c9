package convert

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"singmerge/internal/application/convert/usecases"
	"singmerge/internal/domain/link"
	"singmerge/internal/interfaces/cli/bootstrap"
)

// FormatMerged merges the links into the template; every other format renders the links alone.
const FormatMerged = "singbox"

type options struct {
	bootstrap.Flags
	templatePath   string
	linksPath      string
	format         string
	output         string
	exclude        []string
	administrative []string
	maxLinks       int
	omitOnWarning  bool
	strict         bool
}

func NewCommand() *cobra.Command {
	o := &options{}

	cmd := &cobra.Command{
		Use:   "convert",
		Short: "Convert share links into a sing-box config",
		Long: `Convert vmess://, vless:// and trojan:// share links into sing-box outbounds and merge them
into a template config. Links are read one per line from --links or stdin; blank lines and lines
starting with # are ignored. Links that fail to parse are reported and skipped.

Formats:
  singbox    merge into the template (default)
  outbounds  {"outbounds": [...]} without a template
  clash      Clash Meta proxies list
  links      base64 subscription of the renamed links`,
		Example: `  singmerge convert --template template.json --links nodes.txt --output config.json
  cat nodes.txt | singmerge convert -t template.json --exclude manual
  singmerge convert --format clash < nodes.txt`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, o)
		},
	}

	o.Bind(cmd)
	cmd.Flags().StringVarP(&o.templatePath, "template", "t", "", "Template config file (default: merge.template_path)")
	cmd.Flags().StringVarP(&o.linksPath, "links", "l", "-", "File with one link per line, - for stdin")
	cmd.Flags().StringVarP(&o.format, "format", "f", FormatMerged, "Output format: singbox, outbounds, clash, links")
	cmd.Flags().StringVarP(&o.output, "output", "o", "-", "Output file, - for stdout")
	cmd.Flags().StringSliceVarP(&o.exclude, "exclude", "x", nil, "Group tags whose references are left untouched (default: merge.immutable_groups)")
	cmd.Flags().StringSliceVar(&o.administrative, "administrative", nil, "Tags that must exist exactly once (default: merge.administrative)")
	cmd.Flags().IntVar(&o.maxLinks, "max-links", 0, "Maximum links per run, 0 for no limit (default: merge.max_links)")
	cmd.Flags().BoolVar(&o.omitOnWarning, "omit-on-warning", false, "Write nothing when no link could be converted (default: merge.omit_on_warning)")
	cmd.Flags().BoolVar(&o.strict, "strict", false, "Fail when no link could be converted")

	return cmd
}

func run(cmd *cobra.Command, o *options) error {
	cfg, log, err := o.Load()
	if err != nil {
		return err
	}

	links, err := bootstrap.ReadLinks(o.linksPath, cmd.InOrStdin())
	if err != nil {
		return err
	}

	maxLinks := cfg.Merge.MaxLinks
	if cmd.Flags().Changed("max-links") {
		maxLinks = o.maxLinks
	}
	if err := usecases.ValidateBatchSize(links, maxLinks); err != nil {
		return err
	}

	parser := link.NewParser()
	namer := link.NewDefaultNamer()
	format := strings.ToLower(strings.TrimSpace(o.format))

	if format != FormatMerged {
		uc := usecases.NewConvertLinksUseCase(parser, namer, log)
		result, err := uc.Execute(cmd.Context(), usecases.ConvertLinksCommand{Links: links, Format: format})
		if err != nil {
			return err
		}
		return bootstrap.WriteOutput(o.output, cmd.OutOrStdout(), result.Content)
	}

	template, err := bootstrap.ReadTemplate(bootstrap.StringFlag(cmd, "template", o.templatePath, cfg.Merge.TemplatePath))
	if err != nil {
		return err
	}

	opts := usecases.MergeOptions{
		ImmutableGroups: bootstrap.StringsFlag(cmd, "exclude", o.exclude, cfg.Merge.ImmutableGroups),
		Administrative:  bootstrap.StringsFlag(cmd, "administrative", o.administrative, cfg.Merge.Administrative),
	}
	uc := usecases.NewMergeConfigUseCase(parser, namer, opts, log)

	result := uc.Execute(cmd.Context(), usecases.MergeConfigCommand{
		Template:      template,
		Links:         links,
		OmitOnWarning: bootstrap.BoolFlag(cmd, "omit-on-warning", o.omitOnWarning, cfg.Merge.OmitOnWarning),
	})

	switch result.Status {
	case usecases.StatusError:
		return fmt.Errorf("convert failed: %w", result.Err)
	case usecases.StatusWarning:
		if o.strict {
			return fmt.Errorf("%s", result.Message)
		}
		log.Warnw(result.Message, "skipped", len(result.Skipped))
	default:
		log.Infow(result.Message, "tags", result.Tags)
	}

	if result.ConfigContent == "" {
		return nil
	}
	return bootstrap.WriteOutput(o.output, cmd.OutOrStdout(), result.ConfigContent)
}
