package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/target/maintdesk/internal/adapters/memory"
	"github.com/target/maintdesk/internal/bootstrap"
	domainauth "github.com/target/maintdesk/internal/domain/auth"
	"github.com/target/maintdesk/internal/domain/model"
	"github.com/target/maintdesk/internal/ports"
	"github.com/target/maintdesk/internal/service"
)

const (
	defaultBackendTimeout = 30 * time.Second

	envEmail    = "MAINTDESK_EMAIL"
	envPassword = "MAINTDESK_PASSWORD"
)

type credentialOptions struct {
	Email    string
	Password string
}

type listOptions struct {
	credentialOptions
	Status string
}

func bindCredentials(fs *flag.FlagSet, opts *credentialOptions) {
	fs.StringVar(&opts.Email, "email", os.Getenv(envEmail), "Account email (default $"+envEmail+")")
	fs.StringVar(&opts.Password, "password", os.Getenv(envPassword), "Account password (default $"+envPassword+")")
}

func parseCredentialFlags(name string, args []string) (credentialOptions, error) {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(os.Stderr)

	var opts credentialOptions
	bindCredentials(fs, &opts)
	if err := fs.Parse(args); err != nil {
		return credentialOptions{}, err
	}
	return opts, opts.validate()
}

func parseListFlags(name string, args []string) (listOptions, error) {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(os.Stderr)

	var opts listOptions
	bindCredentials(fs, &opts.credentialOptions)
	fs.StringVar(&opts.Status, "status", "", "Only show tickets in this status (tickets only)")
	if err := fs.Parse(args); err != nil {
		return listOptions{}, err
	}
	if opts.Status != "" {
		status, ok := model.ParseTicketStatus(opts.Status)
		if !ok {
			return listOptions{}, fmt.Errorf("invalid --status %q", opts.Status)
		}
		opts.Status = string(status)
	}
	return opts, opts.validate()
}

func (o credentialOptions) validate() error {
	if strings.TrimSpace(o.Email) == "" || o.Password == "" {
		return errors.New("--email and --password are required (or set " + envEmail + " and " + envPassword + ")")
	}
	return nil
}

// backendSession is a signed-in session against the configured backend.
type backendSession struct {
	rs      *service.RequestSession
	runtime *bootstrap.BackendRuntime
}

func (s *backendSession) Close(ctx context.Context) error {
	s.rs.Auth.Logout(ctx)
	return s.runtime.Close(ctx)
}

// openBackend starts an unauthenticated session against the configured backend.
func openBackend(cmdCtx *commandContext) (*backendSession, error) {
	runtime, err := bootstrap.BuildBackend(bootstrap.BackendDeps{
		Backend:    cmdCtx.Config.Backend,
		DevBackend: cmdCtx.Config.DevBackend,
		Logger:     cmdCtx.Logger,
	})
	if err != nil {
		return nil, err
	}
	sessions := service.NewSessionService(service.SessionServiceOptions{
		Repo:     memory.NewSessionRepository(nil),
		Backends: runtime.Factory,
		Config:   service.SessionConfig{Logger: cmdCtx.Logger},
	})
	rs, err := sessions.Open(cmdCtx.Ctx, "")
	if err != nil {
		if cerr := runtime.Close(cmdCtx.Ctx); cerr != nil {
			cmdCtx.Logger.Warn("close backend failed", "error", cerr)
		}
		return nil, fmt.Errorf("open session: %w", err)
	}
	return &backendSession{rs: rs, runtime: runtime}, nil
}

// signIn opens a backend session and logs in with creds.
func signIn(cmdCtx *commandContext, creds credentialOptions) (*backendSession, error) {
	sess, err := openBackend(cmdCtx)
	if err != nil {
		return nil, err
	}
	if _, err := sess.rs.Auth.Login(cmdCtx.Ctx, creds.Email, creds.Password); err != nil {
		if cerr := sess.runtime.Close(cmdCtx.Ctx); cerr != nil {
			cmdCtx.Logger.Warn("close backend failed", "error", cerr)
		}
		return nil, fmt.Errorf("sign in as %s: %w", creds.Email, err)
	}
	return sess, nil
}

func withSignedIn(cmdCtx *commandContext, creds credentialOptions, fn func(ctx context.Context, rs *service.RequestSession) error) error {
	ctx, cancel := context.WithTimeout(cmdCtx.Ctx, defaultBackendTimeout)
	defer cancel()

	scoped := *cmdCtx
	scoped.Ctx = ctx
	sess, err := signIn(&scoped, creds)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := sess.Close(context.WithoutCancel(ctx)); cerr != nil {
			cmdCtx.Logger.Warn("close backend failed", "error", cerr)
		}
	}()
	return fn(ctx, sess.rs)
}

func runWhoAmI(cmdCtx *commandContext, args []string) error {
	creds, err := parseCredentialFlags("whoami", args)
	if err != nil {
		return err
	}
	return withSignedIn(cmdCtx, creds, func(_ context.Context, rs *service.RequestSession) error {
		id := rs.Store.Identity()
		if id == nil {
			return errors.New("backend did not return an identity")
		}
		scope, _ := domainauth.ScopeFor(id)
		tw := tabwriter.NewWriter(cmdCtx.Out, 0, 0, 2, ' ', 0)
		for _, row := range [][2]string{
			{"ID", id.ID},
			{"Email", id.Email},
			{"Role", string(id.Role)},
			{"Scope", string(scope)},
		} {
			if err := writef(tw, "%s:\t%s\n", row[0], row[1]); err != nil {
				return err
			}
		}
		return tw.Flush()
	})
}

func runTickets(cmdCtx *commandContext, args []string) error {
	opts, err := parseListFlags("tickets", args)
	if err != nil {
		return err
	}
	return withSignedIn(cmdCtx, opts.credentialOptions, func(ctx context.Context, rs *service.RequestSession) error {
		res := rs.Fetcher.Tickets(ctx)
		if res.Failed() {
			return fmt.Errorf("list tickets: %w", res.Err)
		}
		tickets := res.Items
		if opts.Status != "" {
			tickets = model.FilterTicketsByStatus(tickets, model.TicketStatus(opts.Status))
		}
		return printTickets(cmdCtx, res.Scope, tickets)
	})
}

func printTickets(cmdCtx *commandContext, scope domainauth.Scope, tickets []model.Ticket) error {
	if err := writef(cmdCtx.Out, "%d ticket(s), scope %s\n", len(tickets), scope); err != nil {
		return err
	}
	if len(tickets) == 0 {
		return nil
	}
	tw := tabwriter.NewWriter(cmdCtx.Out, 0, 0, 2, ' ', 0)
	if err := writeln(tw, "ID\tSTATUS\tPRIORITY\tTYPE\tSUBJECT\tCREATED"); err != nil {
		return err
	}
	for _, t := range tickets {
		if err := writef(tw, "%s\t%s\t%d\t%s\t%s\t%s\n",
			t.ID, t.Status, t.Priority, t.RequestType, t.Subject, t.CreatedAt.Format(time.DateOnly)); err != nil {
			return err
		}
	}
	return tw.Flush()
}

func runEquipment(cmdCtx *commandContext, args []string) error {
	opts, err := parseListFlags("equipment", args)
	if err != nil {
		return err
	}
	return withSignedIn(cmdCtx, opts.credentialOptions, func(ctx context.Context, rs *service.RequestSession) error {
		res := rs.Fetcher.Equipment(ctx)
		if res.Failed() {
			return fmt.Errorf("list equipment: %w", res.Err)
		}
		if err := writef(cmdCtx.Out, "%d item(s), scope %s\n", len(res.Items), res.Scope); err != nil {
			return err
		}
		if len(res.Items) == 0 {
			return nil
		}
		tw := tabwriter.NewWriter(cmdCtx.Out, 0, 0, 2, ' ', 0)
		if err := writeln(tw, "ID\tNAME\tCATEGORY\tTEAM\tSCRAPPED"); err != nil {
			return err
		}
		for _, e := range res.Items {
			if err := writef(tw, "%s\t%s\t%s\t%s\t%t\n", e.ID, e.Name, e.Category, e.MaintenanceTeamID, e.IsScrapped); err != nil {
				return err
			}
		}
		return tw.Flush()
	})
}

func runTeams(cmdCtx *commandContext, args []string) error {
	creds, err := parseCredentialFlags("teams", args)
	if err != nil {
		return err
	}
	return withSignedIn(cmdCtx, creds, func(ctx context.Context, rs *service.RequestSession) error {
		res := rs.Fetcher.Teams(ctx)
		if res.Skipped {
			return errors.New("teams are only visible to administrators")
		}
		if res.Failed() {
			return fmt.Errorf("list teams: %w", res.Err)
		}
		tw := tabwriter.NewWriter(cmdCtx.Out, 0, 0, 2, ' ', 0)
		if err := writeln(tw, "ID\tNAME\tDESCRIPTION"); err != nil {
			return err
		}
		for _, t := range res.Items {
			desc := ""
			if t.Description != nil {
				desc = *t.Description
			}
			if err := writef(tw, "%s\t%s\t%s\n", t.ID, t.Name, desc); err != nil {
				return err
			}
		}
		return tw.Flush()
	})
}

type registerOptions struct {
	credentialOptions
	Role string
}

func parseRegisterFlags(args []string) (registerOptions, error) {
	fs := flag.NewFlagSet("register", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)

	var opts registerOptions
	bindCredentials(fs, &opts.credentialOptions)
	fs.StringVar(&opts.Role, "role", "", "Account role: ADMIN or USER (backend default when empty)")
	if err := fs.Parse(args); err != nil {
		return registerOptions{}, err
	}
	if err := opts.validate(); err != nil {
		return registerOptions{}, err
	}
	if opts.Role != "" {
		role, err := domainauth.ParseRole(opts.Role)
		if err != nil {
			return registerOptions{}, err
		}
		opts.Role = string(role)
	}
	return opts, nil
}

func runRegister(cmdCtx *commandContext, args []string) error {
	opts, err := parseRegisterFlags(args)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(cmdCtx.Ctx, defaultBackendTimeout)
	defer cancel()
	scoped := *cmdCtx
	scoped.Ctx = ctx

	sess, err := openBackend(&scoped)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := sess.runtime.Close(context.WithoutCancel(ctx)); cerr != nil {
			cmdCtx.Logger.Warn("close backend failed", "error", cerr)
		}
	}()

	acct, err := sess.rs.Auth.Register(ctx, ports.RegisterInput{
		Email:    opts.Email,
		Password: opts.Password,
		Role:     domainauth.Role(opts.Role),
	})
	if err != nil {
		return fmt.Errorf("register %s: %w", opts.Email, err)
	}
	return writef(cmdCtx.Out, "Registered %s (id %s, role %s)\n", acct.Email, acct.ID, acct.Role)
}
