package main

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/desertthunder/amjp/internal/shared"
	"github.com/urfave/cli/v3"
)

var openBrowser = shared.OpenBrowser

// CatalogSearch looks up one title and artist without touching the library.
func (r *Runner) CatalogSearch(ctx context.Context, cmd *cli.Command) error {
	title := strings.TrimSpace(cmd.StringArg("title"))
	artist := strings.TrimSpace(cmd.StringArg("artist"))
	if title == "" && artist == "" {
		return fmt.Errorf("%w: title or artist is required", shared.ErrMissingArgument)
	}
	if _, err := r.loadConfig(cmd); err != nil {
		return err
	}

	svc := r.catalog(cmd.String("country"))
	if u, err := svc.SearchURL(title, artist); err == nil {
		r.logger.Debug("catalog request", "url", u)
	}

	meta, err := svc.Search(ctx, title, artist)
	if errors.Is(err, shared.ErrNoMatch) {
		if cmd.Bool("json") {
			return r.writeJSON(nil, false)
		}
		r.writePlain("No match for %q by %q in the %s storefront\n", title, artist, strings.ToUpper(svc.Country()))
		return nil
	}
	if err != nil {
		return err
	}

	if cmd.Bool("json") {
		if err := r.writeJSON(meta, true); err != nil {
			return err
		}
	} else {
		r.writePlainHeader(fmt.Sprintf("%s (%s)", svc.Name(), strings.ToUpper(svc.Country())))
		r.writePlain("Title:  %s\n", meta.Title)
		r.writePlain("Album:  %s\n", meta.Album)
		r.writePlain("Artist: %s\n", meta.Artist)
		if meta.ViewURL != "" {
			r.writePlain("URL:    %s\n", meta.ViewURL)
		}
	}

	if cmd.Bool("open") {
		if err := openBrowser(meta.ViewURL); err != nil {
			return err
		}
	}
	return nil
}
