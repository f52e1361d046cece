package main

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/target/maintdesk/config"
	redisadapter "github.com/target/maintdesk/internal/adapters/redis"
	"github.com/target/maintdesk/internal/bootstrap"
	domainauth "github.com/target/maintdesk/internal/domain/auth"
)

const (
	sessionScanCount  = 100
	sessionCmdTimeout = 2 * time.Minute
)

type sessionListOptions struct {
	Email string
	Limit int
}

type sessionClearOptions struct {
	Email  string
	All    bool
	DryRun bool
	Yes    bool
}

func parseSessionListFlags(args []string) (sessionListOptions, error) {
	fs := flag.NewFlagSet("list-sessions", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)

	var opts sessionListOptions
	fs.StringVar(&opts.Email, "email", "", "Only show sessions signed in as this email")
	fs.IntVar(&opts.Limit, "limit", 50, "Maximum records to print (0 for no limit)")
	if err := fs.Parse(args); err != nil {
		return sessionListOptions{}, err
	}
	if opts.Limit < 0 {
		return sessionListOptions{}, errors.New("--limit cannot be negative")
	}
	return opts, nil
}

func parseSessionClearFlags(args []string) (sessionClearOptions, error) {
	fs := flag.NewFlagSet("clear-sessions", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)

	var opts sessionClearOptions
	fs.StringVar(&opts.Email, "email", "", "Sign out every browser session of this email")
	fs.BoolVar(&opts.All, "all", false, "Sign out every browser session")
	fs.BoolVar(&opts.DryRun, "dry-run", false, "Print actions without executing")
	fs.BoolVar(&opts.Yes, "yes", false, "Skip confirmation prompt")
	if err := fs.Parse(args); err != nil {
		return sessionClearOptions{}, err
	}
	if opts.All == (opts.Email != "") {
		return sessionClearOptions{}, errors.New("exactly one of --email or --all is required")
	}
	return opts, nil
}

// sessionEntry is one browser session record found in Redis.
type sessionEntry struct {
	Key     string
	Session domainauth.Session
	TTL     time.Duration
}

func (e sessionEntry) email() string {
	if e.Session.Identity == nil {
		return ""
	}
	return e.Session.Identity.Email
}

func (e sessionEntry) matches(email string) bool {
	return email == "" || strings.EqualFold(e.email(), email)
}

// connectSessionRedis connects to the session store's Redis.
//
//nolint:ireturn // mirrors bootstrap.ConnectRedis.
func connectSessionRedis(cmdCtx *commandContext) (redis.UniversalClient, error) {
	if cmdCtx.Config.Session.Store == config.SessionStoreMemory {
		return nil, errors.New("SESSION_STORE=memory keeps sessions inside the server process; nothing to inspect")
	}
	return bootstrap.ConnectRedis(cmdCtx.Ctx, bootstrap.RedisConnectConfig{
		Redis:  cmdCtx.Config.Redis,
		Logger: cmdCtx.Logger,
	})
}

func sessionPrefix(cfg config.AppConfig) string {
	if cfg.Session.KeyPrefix == "" {
		return redisadapter.DefaultKeyPrefix
	}
	return cfg.Session.KeyPrefix
}

// scanSessions walks every session key under prefix and calls fn for each
// record that still exists. Unreadable records are reported with a zero session.
func scanSessions(ctx context.Context, client redis.UniversalClient, prefix string, fn func(sessionEntry) (bool, error)) error {
	iter := client.Scan(ctx, 0, prefix+"*", sessionScanCount).Iterator()
	for iter.Next(ctx) {
		key := iter.Val()
		data, err := client.Get(ctx, key).Bytes()
		if errors.Is(err, redis.Nil) {
			continue
		}
		if err != nil {
			return fmt.Errorf("get %s: %w", key, err)
		}
		entry := sessionEntry{Key: key}
		if uerr := json.Unmarshal(data, &entry.Session); uerr != nil {
			entry.Session = domainauth.Session{ID: strings.TrimPrefix(key, prefix)}
		}
		if ttl, terr := client.TTL(ctx, key).Result(); terr == nil {
			entry.TTL = ttl
		}
		more, err := fn(entry)
		if err != nil {
			return err
		}
		if !more {
			return nil
		}
	}
	if err := iter.Err(); err != nil {
		return fmt.Errorf("scan sessions: %w", err)
	}
	return nil
}

func runListSessions(cmdCtx *commandContext, args []string) error {
	opts, err := parseSessionListFlags(args)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(cmdCtx.Ctx, sessionCmdTimeout)
	defer cancel()

	client, err := connectSessionRedis(cmdCtx)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := client.Close(); cerr != nil {
			cmdCtx.Logger.Warn("redis close failed", "error", cerr)
		}
	}()

	return listSessions(ctx, cmdCtx.Out, client, sessionPrefix(cmdCtx.Config), opts)
}

func listSessions(ctx context.Context, out io.Writer, client redis.UniversalClient, prefix string, opts sessionListOptions) error {
	tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	if err := writeln(tw, "SESSION\tEMAIL\tROLE\tBACKEND\tRESOLVED\tEXPIRES IN"); err != nil {
		return err
	}
	shown := 0
	err := scanSessions(ctx, client, prefix, func(e sessionEntry) (bool, error) {
		if !e.matches(opts.Email) {
			return true, nil
		}
		role := ""
		if e.Session.Identity != nil {
			role = string(e.Session.Identity.Role)
		}
		backend := "no"
		if len(e.Session.BackendCookies) > 0 {
			backend = "yes"
		}
		resolved := ""
		if !e.Session.ResolvedAt.IsZero() {
			resolved = e.Session.ResolvedAt.UTC().Format(time.RFC3339)
		}
		if err := writef(tw, "%s\t%s\t%s\t%s\t%s\t%s\n",
			e.Session.ID, e.email(), role, backend, resolved, e.TTL.Round(time.Second)); err != nil {
			return false, err
		}
		shown++
		return opts.Limit == 0 || shown < opts.Limit, nil
	})
	if err != nil {
		return err
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	return writef(out, "\n%d session(s)\n", shown)
}

func runClearSessions(cmdCtx *commandContext, args []string) error {
	opts, err := parseSessionClearFlags(args)
	if err != nil {
		return err
	}
	if err := confirmClearSessions(cmdCtx, opts); err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(cmdCtx.Ctx, sessionCmdTimeout)
	defer cancel()

	client, err := connectSessionRedis(cmdCtx)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := client.Close(); cerr != nil {
			cmdCtx.Logger.Warn("redis close failed", "error", cerr)
		}
	}()

	removed, err := clearSessions(ctx, cmdCtx.Out, client, sessionPrefix(cmdCtx.Config), opts)
	if err != nil {
		return err
	}
	cmdCtx.Logger.Info("clear sessions complete", "removed", removed, "dry_run", opts.DryRun)
	return nil
}

func clearSessions(ctx context.Context, out io.Writer, client redis.UniversalClient, prefix string, opts sessionClearOptions) (int, error) {
	var keys []string
	err := scanSessions(ctx, client, prefix, func(e sessionEntry) (bool, error) {
		if opts.All || e.matches(opts.Email) {
			keys = append(keys, e.Key)
		}
		return true, nil
	})
	if err != nil {
		return 0, err
	}

	if opts.DryRun {
		for _, k := range keys {
			if err := writef(out, "would delete %s\n", k); err != nil {
				return 0, err
			}
		}
		return 0, nil
	}
	if len(keys) == 0 {
		return 0, writeln(out, "No matching sessions.")
	}
	n, err := client.Del(ctx, keys...).Result()
	if err != nil {
		return 0, fmt.Errorf("delete sessions: %w", err)
	}
	return int(n), writef(out, "Deleted %d session(s).\n", n)
}

func confirmClearSessions(cmdCtx *commandContext, opts sessionClearOptions) error {
	if opts.DryRun || opts.Yes {
		return nil
	}
	target := "every browser session"
	if opts.Email != "" {
		target = "every browser session of " + opts.Email
	}
	if err := writef(cmdCtx.Out, "About to sign out %s.\nContinue? [y/N]: ", target); err != nil {
		return fmt.Errorf("print confirmation prompt: %w", err)
	}
	resp, err := bufio.NewReader(cmdCtx.In).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return errors.New("aborted by user")
	}
	resp = strings.ToLower(strings.TrimSpace(resp))
	if resp == "y" || resp == "yes" {
		return nil
	}
	return errors.New("aborted by user")
}
