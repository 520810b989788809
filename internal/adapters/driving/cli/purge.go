package cli

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/zenpurge-cli/internal/adapters/driven/checkpoint/sqlite"
	"github.com/custodia-labs/zenpurge-cli/internal/adapters/driven/config/file"
	"github.com/custodia-labs/zenpurge-cli/internal/connectors/zendesk"
	"github.com/custodia-labs/zenpurge-cli/internal/core/domain"
	"github.com/custodia-labs/zenpurge-cli/internal/core/ports/driven"
	"github.com/custodia-labs/zenpurge-cli/internal/core/services"
	"github.com/custodia-labs/zenpurge-cli/internal/logger"
)

var (
	purgeAuth       string
	purgeUser       string
	purgeSecret     string
	purgeDays       int
	purgeStatuses   string
	purgeStrategy   string
	purgeScrub      bool
	purgeYes        bool
	purgeMaxRecords int
	purgeResume     bool
)

var purgeCmd = &cobra.Command{
	Use:   "purge [subdomain]",
	Short: "Delete (and optionally scrub) tickets older than a threshold",
	Long: `Enumerates tickets, selects those strictly older than the age
threshold (optionally narrowed to a status list), asks for confirmation
and bulk-deletes the selection. With --scrub the soft-deleted tickets are
then irreversibly scrubbed as a second phase. The scrub phase never
starts before the whole delete phase is acknowledged.

The authenticating user must be an administrator on the target account.

Examples:
  # Delete tickets older than 29 days with a password login
  zenpurge purge codebros-dot-com --auth password --user john --days 29

  # Delete and scrub closed/solved tickets using an API token
  zenpurge purge codebros-dot-com --user sally@codebros.com \
    --status closed,solved --scrub

  # Resume an interrupted enumeration
  zenpurge purge codebros-dot-com --user sally@codebros.com --resume`,
	Args: cobra.MaximumNArgs(1),
	RunE: runPurge,
}

func init() {
	purgeCmd.Flags().StringVar(&purgeAuth, "auth", "", "auth scheme: password or api-token (default api-token)")
	purgeCmd.Flags().StringVarP(&purgeUser, "user", "u", "", "username or email address to authenticate with")
	purgeCmd.Flags().StringVar(&purgeSecret, "secret", "", "password or API token (prompted when omitted)")
	purgeCmd.Flags().IntVarP(&purgeDays, "days", "d", 0, "age threshold in days (default 30)")
	purgeCmd.Flags().StringVar(&purgeStatuses, "status", "", "comma-separated status allow-list, e.g. closed,solved")
	purgeCmd.Flags().StringVar(&purgeStrategy, "strategy", "", "enumeration strategy: search or incremental (default search)")
	purgeCmd.Flags().BoolVar(&purgeScrub, "scrub", false, "irreversibly scrub tickets after deleting them")
	purgeCmd.Flags().BoolVarP(&purgeYes, "yes", "y", false, "skip the confirmation prompt")
	purgeCmd.Flags().IntVar(&purgeMaxRecords, "max-records", 0, "stop enumerating after this many tickets (debug aid)")
	purgeCmd.Flags().BoolVar(&purgeResume, "resume", false, "resume from the saved checkpoint")
	rootCmd.AddCommand(purgeCmd)
}

//nolint:gocyclo // CLI assembly with necessary sequential steps
func runPurge(cmd *cobra.Command, args []string) error {
	opts, err := resolvePurgeOptions(cmd, args)
	if err != nil {
		return err
	}

	// Interrupting the walk cancels the context; the purge service then
	// checkpoints the walker position so --resume can pick it up.
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	client := zendesk.NewClient(opts.creds, zendesk.Config{})
	walkCfg := zendesk.WalkConfig{MaxTickets: purgeMaxRecords}

	var checkpoints driven.CheckpointStore
	store, err := sqlite.NewStore("")
	if err != nil {
		logger.Warn("checkpoint store unavailable, interrupts will not be resumable: %v", err)
	} else {
		defer store.Close()
		checkpoints = store
	}

	var walker *zendesk.Walker
	if purgeResume {
		if checkpoints == nil {
			return fmt.Errorf("cannot resume: checkpoint store unavailable")
		}
		cp, err := checkpoints.Load(ctx)
		if err != nil {
			return fmt.Errorf("load checkpoint: %w", err)
		}
		walker, err = zendesk.ResumeWalker(client, *cp, walkCfg)
		if err != nil {
			return err
		}
		cmd.Printf("Resuming enumeration from checkpoint saved %s (%d tickets collected).\n",
			cp.SavedAt.Format(time.RFC3339), len(cp.Tickets))
	} else {
		var cursor string
		switch opts.flavor {
		case zendesk.FlavorSearch:
			cursor = zendesk.SearchURL(opts.subdomain, opts.days, time.Now())
		case zendesk.FlavorIncremental:
			cursor = zendesk.IncrementalURL(opts.subdomain, 0)
		}
		walker = zendesk.NewWalker(client, opts.flavor, cursor, walkCfg)
	}

	mutator := zendesk.NewMutator(client, opts.subdomain)
	svc := services.NewPurgeService(walker, mutator, checkpoints)

	cmd.Println("Querying for old tickets...")
	plan, err := svc.Plan(ctx, opts.days, opts.statuses)
	if err != nil {
		cmd.PrintErrln("WARNING: enumeration did not finish; data collected so far may be incomplete.")
		return err
	}
	if plan.Empty() {
		cmd.Printf("No tickets older than %d days found.\n", opts.days)
		return nil
	}

	oldest, newest := plan.Oldest(), plan.Newest()
	cmd.Printf("Found %d tickets, with an earliest creation date of %s (ticket %d) and latest creation date of %s (ticket %d).\n",
		len(plan.Tickets), oldest.CreatedDate(), oldest.ID, newest.CreatedDate(), newest.ID)

	if !purgeYes {
		question := fmt.Sprintf("Delete all %d old tickets?", len(plan.Tickets))
		if purgeScrub {
			question = fmt.Sprintf("Delete and irreversibly scrub all %d old tickets?", len(plan.Tickets))
		}
		if !askYesNo(cmd, cmd.InOrStdin(), question, true) {
			cmd.Println("No tickets deleted.")
			return nil
		}
	}

	if err := svc.Purge(ctx, plan.IDs(), purgeScrub); err != nil {
		cmd.PrintErrln("WARNING: the purge did not finish; some tickets may already be deleted.")
		return err
	}

	if purgeScrub {
		cmd.Printf("Deleted and scrubbed %d tickets.\n", len(plan.Tickets))
	} else {
		cmd.Printf("Deleted %d tickets.\n", len(plan.Tickets))
	}
	return nil
}

// purgeOptions are the resolved inputs of one purge invocation: flags
// first, config-file defaults second, built-in defaults last.
type purgeOptions struct {
	subdomain string
	creds     domain.Credentials
	days      int
	statuses  []domain.Status
	flavor    zendesk.CursorFlavor
}

func resolvePurgeOptions(cmd *cobra.Command, args []string) (*purgeOptions, error) {
	cfg, err := file.NewConfigStore("")
	if err != nil {
		logger.Warn("config file unavailable: %v", err)
	}
	getString := func(flag, key string) string {
		if flag != "" {
			return flag
		}
		if cfg == nil {
			return ""
		}
		return cfg.GetString(key)
	}

	opts := &purgeOptions{}

	if len(args) > 0 {
		opts.subdomain = args[0]
	} else {
		opts.subdomain = getString("", file.KeySubdomain)
	}
	if opts.subdomain == "" {
		return nil, fmt.Errorf("no subdomain given (pass it as an argument or set %q in the config file)", file.KeySubdomain)
	}

	scheme := getString(purgeAuth, file.KeyAuth)
	if scheme == "" {
		scheme = string(domain.AuthAPIToken)
	}
	parsedScheme, err := domain.ParseAuthScheme(scheme)
	if err != nil {
		return nil, fmt.Errorf("%w: %q (want password or api-token)", err, scheme)
	}

	user := getString(purgeUser, file.KeyUsername)
	if user == "" {
		return nil, fmt.Errorf("no username given (pass --user or set %q in the config file)", file.KeyUsername)
	}

	secret := purgeSecret
	if secret == "" {
		secret = readSecret(cmd, fmt.Sprintf("Password or API token for %s", user))
	}
	opts.creds = domain.Credentials{Username: user, Secret: secret, Scheme: parsedScheme}
	if !opts.creds.IsComplete() {
		return nil, fmt.Errorf("incomplete credentials")
	}

	opts.days = purgeDays
	if opts.days == 0 && cfg != nil {
		opts.days = cfg.GetInt(file.KeyDays)
	}
	if opts.days == 0 {
		opts.days = 30
	}
	if opts.days < 0 {
		return nil, fmt.Errorf("invalid age threshold %d", opts.days)
	}

	statuses := getString(purgeStatuses, file.KeyStatuses)
	opts.statuses, err = domain.ParseStatusList(statuses)
	if err != nil {
		return nil, fmt.Errorf("%w: %q", err, statuses)
	}

	strategy := getString(purgeStrategy, file.KeyStrategy)
	if strategy == "" {
		strategy = string(zendesk.FlavorSearch)
	}
	opts.flavor, err = zendesk.ParseCursorFlavor(strategy)
	if err != nil {
		return nil, err
	}

	return opts, nil
}
