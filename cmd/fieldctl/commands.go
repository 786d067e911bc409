package main

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/spf13/pflag"

	"github.com/lanoanh-osi/ServiceOps/internal/domain"
	"github.com/lanoanh-osi/ServiceOps/internal/service"
	"github.com/lanoanh-osi/ServiceOps/internal/session"
	apperrors "github.com/lanoanh-osi/ServiceOps/pkg/util/errorutil"
)

// passwordEnv lets scripts log in without an interactive prompt.
const passwordEnv = "FIELDCTL_PASSWORD"

func runLogin(ctx context.Context, a *app, args []string) error {
	var email, password string
	fs := pflag.NewFlagSet("login", pflag.ContinueOnError)
	fs.StringVar(&email, "email", "", "account email")
	fs.StringVar(&password, "password", "", "account password (default $"+passwordEnv+" or stdin)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if email == "" {
		return apperrors.NewValidationError("--email is required", nil)
	}
	if password == "" {
		password = os.Getenv(passwordEnv)
	}
	if password == "" {
		line, err := bufio.NewReader(os.Stdin).ReadString('\n')
		if err != nil && line == "" {
			return apperrors.NewValidationError("password required", nil)
		}
		password = strings.TrimRight(line, "\r\n")
	}

	sess, err := a.manager.Login(ctx, a.store, email, password, session.LoginMeta{})
	if err != nil {
		return err
	}
	id := sess.Identity()
	fmt.Fprintf(a.out, "logged in as %s (%s)\n", id.Email, orDash(id.StaffCode))
	return nil
}

func runLogout(ctx context.Context, a *app, _ []string) error {
	if err := a.manager.Logout(ctx, a.store); err != nil {
		return err
	}
	fmt.Fprintln(a.out, "logged out")
	return nil
}

func runWhoami(ctx context.Context, a *app, _ []string) error {
	sess, err := a.session(ctx)
	if err != nil {
		return err
	}
	id := sess.Identity()
	fmt.Fprintf(a.out, "%s\t%s\n", id.Email, orDash(id.StaffCode))
	return nil
}

func runList(ctx context.Context, a *app, args []string) error {
	var rawType, rawStatus string
	var page, pageSize int
	fs := pflag.NewFlagSet("list", pflag.ContinueOnError)
	fs.StringVar(&rawType, "type", "", "delivery, maintenance or sales")
	fs.StringVar(&rawStatus, "status", "", "assigned, in-progress or completed (default all)")
	fs.IntVar(&page, "page", 0, "1-based page (default whole list)")
	fs.IntVar(&pageSize, "page-size", 0, "page size")
	if err := fs.Parse(args); err != nil {
		return err
	}
	t, err := parseType(rawType)
	if err != nil {
		return err
	}
	q := service.ListQuery{Type: t, Page: page, PageSize: pageSize}
	if rawStatus != "" {
		b, ok := domain.ParseBucket(rawStatus)
		if !ok {
			return apperrors.NewValidationError(fmt.Sprintf("unknown status %q", rawStatus), nil)
		}
		q.Bucket = b
	}

	sess, err := a.session(ctx)
	if err != nil {
		return err
	}
	result, err := a.tickets.List(ctx, sess, q)
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(a.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tSTATUS\tDEADLINE\tTITLE")
	for _, item := range result.Items {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", item.ID, item.StatusDisplayLabel, orDash(item.Deadline), item.Title)
	}
	if err := w.Flush(); err != nil {
		return err
	}
	if result.FellBack {
		fmt.Fprintln(a.out, "(no tickets in this tab; showing all)")
	}
	fmt.Fprintf(a.out, "%d ticket(s)\n", result.Total)
	return nil
}

func runShow(ctx context.Context, a *app, args []string) error {
	t, id, err := ticketFlags("show", args)
	if err != nil {
		return err
	}
	sess, err := a.session(ctx)
	if err != nil {
		return err
	}
	detail, err := a.tickets.Detail(ctx, sess, t, id)
	if err != nil {
		return err
	}
	enc := json.NewEncoder(a.out)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	return enc.Encode(detail)
}

func runAccept(ctx context.Context, a *app, args []string) error {
	t, id, err := ticketFlags("accept", args)
	if err != nil {
		return err
	}
	sess, err := a.session(ctx)
	if err != nil {
		return err
	}
	if err := a.actions.Accept(ctx, sess, t, id); err != nil {
		return err
	}
	fmt.Fprintf(a.out, "accepted %s\n", id)
	return nil
}

func runCounts(ctx context.Context, a *app, _ []string) error {
	sess, err := a.session(ctx)
	if err != nil {
		return err
	}
	counts, err := a.tickets.Counts(ctx, sess)
	if err != nil {
		return err
	}
	w := tabwriter.NewWriter(a.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "TYPE\tASSIGNED\tIN-PROGRESS\tCOMPLETED")
	for _, t := range domain.TicketTypes {
		c := counts[t]
		fmt.Fprintf(w, "%s\t%d\t%d\t%d\n", t, c[domain.BucketAssigned], c[domain.BucketInProgress], c[domain.BucketCompleted])
	}
	return w.Flush()
}

func ticketFlags(name string, args []string) (domain.TicketType, string, error) {
	var rawType, id string
	fs := pflag.NewFlagSet(name, pflag.ContinueOnError)
	fs.StringVar(&rawType, "type", "", "delivery, maintenance or sales")
	fs.StringVar(&id, "id", "", "ticket id")
	if err := fs.Parse(args); err != nil {
		return "", "", err
	}
	t, err := parseType(rawType)
	if err != nil {
		return "", "", err
	}
	if strings.TrimSpace(id) == "" {
		return "", "", apperrors.NewValidationError("--id is required", nil)
	}
	return t, strings.TrimSpace(id), nil
}

func parseType(raw string) (domain.TicketType, error) {
	t, ok := domain.ParseTicketType(raw)
	if !ok {
		return "", apperrors.NewValidationError(fmt.Sprintf("--type must be delivery, maintenance or sales, got %q", raw), nil)
	}
	return t, nil
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
