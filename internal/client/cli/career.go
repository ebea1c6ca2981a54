package cli

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/careercompass/internal/client/client"
)

var getMultiline = GetMultiline

// Chat sends text to the career assistant, prompting for it when empty.
func (a *App) Chat(ctx context.Context, text string) error {
	if text == "" {
		var err error
		if text, err = getMultiline(a.reader, "Ask the career assistant", a.out); err != nil {
			return err
		}
	}

	msg, err := a.career.Chat(ctx, text)
	if err != nil {
		return a.report(err)
	}
	fmt.Fprintln(a.out, msg.Response)
	return nil
}

func (a *App) History(ctx context.Context) error {
	msgs, err := a.career.History(ctx)
	if err != nil {
		return a.report(err)
	}
	if len(msgs) == 0 {
		fmt.Fprintln(a.out, "No conversations yet")
		return nil
	}
	for _, m := range msgs {
		fmt.Fprintf(a.out, "[%s] %s\n  %s\n", m.CreatedAt.Local().Format("2006-01-02 15:04"), m.Message, m.Response)
	}
	return nil
}

func (a *App) Jobs(ctx context.Context, title string) error {
	location := ""
	if title == "" {
		var err error
		if title, err = getSimpleText(a.reader, "Job title", a.out); err != nil {
			return err
		}
		if location, err = getSimpleText(a.reader, "Location (empty for India)", a.out); err != nil {
			return err
		}
	}

	jobs, err := a.career.Jobs(ctx, title, location)
	if err != nil {
		return a.report(err)
	}
	if len(jobs) == 0 {
		fmt.Fprintln(a.out, "No jobs found")
		return nil
	}
	for i, j := range jobs {
		place := strings.Join(nonEmpty(j.City, j.Country), ", ")
		fmt.Fprintf(a.out, "%d. %s - %s (%s)\n", i+1, j.Title, j.Employer, place)
		if j.ApplyLink != "" {
			fmt.Fprintf(a.out, "   Apply: %s\n", j.ApplyLink)
		}
	}
	return nil
}

func (a *App) Colleges(ctx context.Context, field string) error {
	location := ""
	if field == "" {
		var err error
		if field, err = getSimpleText(a.reader, "Field of study", a.out); err != nil {
			return err
		}
		if location, err = getSimpleText(a.reader, "Location (optional)", a.out); err != nil {
			return err
		}
	}

	colleges, err := a.career.Colleges(ctx, field, location)
	if err != nil {
		return a.report(err)
	}
	if len(colleges) == 0 {
		fmt.Fprintln(a.out, "No colleges found")
		return nil
	}
	for i, c := range colleges {
		fmt.Fprintf(a.out, "%d. %s (%s)\n", i+1, c.Name, c.Location)
		if c.Website != "" {
			fmt.Fprintf(a.out, "   %s\n", c.Website)
		}
	}
	return nil
}

// report prints err for the user unless the session notifier already did.
func (a *App) report(err error) error {
	if errors.Is(err, client.ErrSessionExpired) {
		return err
	}

	var valErr *client.ValidationError
	var httpErr *client.HTTPError
	switch {
	case errors.As(err, &valErr):
		fmt.Fprintln(a.out, "Error:", valErr.Message)
	case errors.Is(err, client.ErrUnavailable):
		fmt.Fprintln(a.out, "Error: server unavailable, please try again later")
	case errors.As(err, &httpErr) && httpErr.Body.Summary() != "":
		fmt.Fprintln(a.out, "Error:", httpErr.Body.Summary())
	default:
		fmt.Fprintln(a.out, "Error:", err)
	}
	return err
}

func nonEmpty(values ...string) []string {
	out := values[:0:0]
	for _, v := range values {
		if v != "" {
			out = append(out, v)
		}
	}
	return out
}
