package publish

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"singmerge/internal/application/convert/usecases"
	"singmerge/internal/domain/link"
	"singmerge/internal/infrastructure/publisher"
	"singmerge/internal/interfaces/cli/bootstrap"
)

type options struct {
	bootstrap.Flags
	templatePath string
	linksPath    string
	exclude      []string
	owner        string
	repo         string
	branch       string
	path         string
	message      string
	output       string
}

func NewCommand() *cobra.Command {
	o := &options{}

	cmd := &cobra.Command{
		Use:   "publish",
		Short: "Merge share links into the template and commit the result to GitHub",
		Long: `Merge share links into the template like convert, then create or update the config file in a
GitHub repository through the contents API. Nothing is committed unless at least one link converted.

The token is read from github.token, SINGMERGE_GITHUB_TOKEN or GITHUB_TOKEN.`,
		Example: `  singmerge publish -t template.json -l nodes.txt --owner me --repo configs --path sing-box.json`,
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, o)
		},
	}

	o.Bind(cmd)
	cmd.Flags().StringVarP(&o.templatePath, "template", "t", "", "Template config file (default: merge.template_path)")
	cmd.Flags().StringVarP(&o.linksPath, "links", "l", "-", "File with one link per line, - for stdin")
	cmd.Flags().StringSliceVarP(&o.exclude, "exclude", "x", nil, "Group tags whose references are left untouched (default: merge.immutable_groups)")
	cmd.Flags().StringVar(&o.owner, "owner", "", "Repository owner (default: github.owner)")
	cmd.Flags().StringVar(&o.repo, "repo", "", "Repository name (default: github.repo)")
	cmd.Flags().StringVar(&o.branch, "branch", "", "Branch to commit to (default: github.branch)")
	cmd.Flags().StringVar(&o.path, "path", "", "File path in the repository (default: github.path)")
	cmd.Flags().StringVarP(&o.message, "message", "m", "", "Commit message (default: github.commit_message)")
	cmd.Flags().StringVarP(&o.output, "output", "o", "", "Also write the merged config to this file")

	return cmd
}

func run(cmd *cobra.Command, o *options) error {
	cfg, log, err := o.Load()
	if err != nil {
		return err
	}

	gh := cfg.GitHub
	if gh.Token == "" {
		gh.Token = os.Getenv("GITHUB_TOKEN")
	}
	if gh.Token == "" {
		return fmt.Errorf("no GitHub token configured; set github.token or GITHUB_TOKEN")
	}

	links, err := bootstrap.ReadLinks(o.linksPath, cmd.InOrStdin())
	if err != nil {
		return err
	}
	if err := usecases.ValidateBatchSize(links, cfg.Merge.MaxLinks); err != nil {
		return err
	}

	template, err := bootstrap.ReadTemplate(bootstrap.StringFlag(cmd, "template", o.templatePath, cfg.Merge.TemplatePath))
	if err != nil {
		return err
	}

	merge := usecases.NewMergeConfigUseCase(link.NewParser(), link.NewDefaultNamer(), usecases.MergeOptions{
		ImmutableGroups: bootstrap.StringsFlag(cmd, "exclude", o.exclude, cfg.Merge.ImmutableGroups),
		Administrative:  cfg.Merge.Administrative,
	}, log)
	uc := usecases.NewPublishConfigUseCase(merge, publisher.NewGitHubPublisher(gh, log.Named("publisher")), log)

	result := uc.Execute(cmd.Context(), usecases.PublishConfigCommand{
		Merge: usecases.MergeConfigCommand{
			Template:      template,
			Links:         links,
			OmitOnWarning: true,
		},
		Target: usecases.PublishTarget{
			Owner:  bootstrap.StringFlag(cmd, "owner", o.owner, gh.Owner),
			Repo:   bootstrap.StringFlag(cmd, "repo", o.repo, gh.Repo),
			Branch: bootstrap.StringFlag(cmd, "branch", o.branch, gh.Branch),
			Path:   bootstrap.StringFlag(cmd, "path", o.path, gh.Path),
		},
		CommitMessage: bootstrap.StringFlag(cmd, "message", o.message, gh.CommitMessage),
	})

	if o.output != "" && result.ConfigContent != "" {
		if err := bootstrap.WriteOutput(o.output, cmd.OutOrStdout(), result.ConfigContent); err != nil {
			return err
		}
	}

	switch result.Status {
	case usecases.StatusError:
		return fmt.Errorf("publish failed: %w", result.Err)
	case usecases.StatusWarning:
		return fmt.Errorf("nothing published: %s", result.Message)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "%s (commit %s)\n", result.Message, result.Receipt.CommitSHA)
	return nil
}
