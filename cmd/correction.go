package main

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/urfave/cli/v3"

	"github.com/desertthunder/correx/internal/formatter"
	"github.com/desertthunder/correx/internal/models"
	"github.com/desertthunder/correx/internal/query"
	"github.com/desertthunder/correx/internal/resolve"
	"github.com/desertthunder/correx/internal/shared"
	"github.com/desertthunder/correx/internal/tasks"
)

func correctionParams(cmd *cli.Command) (resolve.Params, error) {
	return resolve.ParseParams(cmd.StringArg("id"), cmd.String("compare"))
}

func entityArgs(cmd *cli.Command) (models.EntityType, int, error) {
	raw := cmd.StringArg("entity")
	if raw == "" {
		return "", 0, fmt.Errorf("%w: entity type is required (%s)", shared.ErrMissingArgument, entityChoices())
	}
	entityType, err := models.ParseEntityType(raw)
	if err != nil {
		return "", 0, fmt.Errorf("%w (%s)", err, entityChoices())
	}

	id, err := strconv.Atoi(cmd.StringArg("id"))
	if err != nil || id <= 0 {
		return "", 0, fmt.Errorf("%w: entity id %q must be a positive integer", shared.ErrInvalidArgument, cmd.StringArg("id"))
	}
	return entityType, id, nil
}

func entityChoices() string {
	names := make([]string, len(models.EntityTypes))
	for i, e := range models.EntityTypes {
		names[i] = e.PathSegment()
	}
	return strings.Join(names, ", ")
}

// loadPage loads a correction page; a failed detail fails the command, other parts are logged.
func (r *Runner) loadPage(ctx context.Context, engine tasks.Loader, params resolve.Params) (*models.CorrectionPage, error) {
	r.logger.Debug("loading correction", "id", params.CorrectionID, "diff", params.DiffQuery().String())

	page, err := engine.Load(ctx, params, nil)
	if err != nil {
		return nil, err
	}
	if page.DetailErr != nil {
		return nil, fmt.Errorf("failed to load correction %d: %w", params.CorrectionID, page.DetailErr)
	}

	for part, err := range map[string]error{"diff": page.DiffErr, "revisions": page.RevisionsErr, "history": page.HistoryErr} {
		if err != nil {
			r.logger.Warn("part of the page failed to load", "part", part, "error", err)
		}
	}
	return page, nil
}

// writePage renders page to the output, to --output, or through glamour with --markdown.
func (r *Runner) writePage(cmd *cli.Command, page *models.CorrectionPage) error {
	if cmd.Bool("markdown") {
		rendered, err := formatter.RenderMarkdown(formatter.PageToMarkdown(page), 0)
		if err != nil {
			return err
		}
		return r.writePlain("%s", rendered)
	}

	format, err := formatter.ParseFormat(cmd.String("format"))
	if err != nil {
		return err
	}

	if path := cmd.String("output"); path != "" {
		if err := formatter.WritePage(page, format, path); err != nil {
			return err
		}
		r.logger.Info("page written", "path", path, "format", format)
		return r.writePlain("✓ Saved correction #%d to %s\n", page.CorrectionID, path)
	}

	data, err := formatter.FormatPage(page, format)
	if err != nil {
		return err
	}
	return r.writeBytes(data)
}

// CorrectionShow prints the detail, diff, revisions and compare candidates of a correction.
func (r *Runner) CorrectionShow(ctx context.Context, cmd *cli.Command) error {
	params, err := correctionParams(cmd)
	if err != nil {
		return err
	}

	page, err := r.loadPage(ctx, r.engine, params)
	if err != nil {
		return err
	}
	return r.writePage(cmd, page)
}

// CorrectionDiff prints only the selected diff.
func (r *Runner) CorrectionDiff(ctx context.Context, cmd *cli.Command) error {
	params, err := correctionParams(cmd)
	if err != nil {
		return err
	}
	format, err := formatter.ParseFormat(cmd.String("format"))
	if err != nil {
		return err
	}

	diff, err := query.Ensure(ctx, r.cache, params.DiffQuery().Option(query.NewOptions(r.corrections)))
	if err != nil {
		return fmt.Errorf("failed to load %s: %w", params.DiffQuery(), err)
	}

	switch format {
	case formatter.FormatJSON:
		return r.writeJSON(diff, true)
	case formatter.FormatCSV:
		data, err := formatter.DiffToCSV(diff)
		if err != nil {
			return err
		}
		return r.writeBytes(data)
	case formatter.FormatMarkdown:
		return r.writeBytes(formatter.DiffToMarkdown(diff))
	default:
		return r.writeBytes(formatter.DiffToText(diff))
	}
}

// CorrectionRevisions lists the revisions recorded under a correction.
func (r *Runner) CorrectionRevisions(ctx context.Context, cmd *cli.Command) error {
	params, err := correctionParams(cmd)
	if err != nil {
		return err
	}

	revisions, err := query.Ensure(ctx, r.cache, query.NewOptions(r.corrections).Revisions(params.CorrectionID))
	if err != nil {
		return fmt.Errorf("failed to load revisions of correction %d: %w", params.CorrectionID, err)
	}

	if cmd.Bool("json") {
		return r.writeJSON(revisions, true)
	}
	if len(revisions) == 0 {
		return r.writePlain("No revisions.\n")
	}
	for _, rev := range revisions {
		r.writePlain("#%d %s: %s\n", rev.EntityHistoryID, rev.Author.Name, rev.Description)
	}
	return nil
}

// CorrectionHistory lists an entity's corrections, newest first.
func (r *Runner) CorrectionHistory(ctx context.Context, cmd *cli.Command) error {
	entityType, id, err := entityArgs(cmd)
	if err != nil {
		return err
	}
	format, err := formatter.ParseFormat(cmd.String("format"))
	if err != nil {
		return err
	}

	items, err := r.engine.History(ctx, entityType, id)
	if err != nil {
		return fmt.Errorf("failed to load history of %s #%d: %w", entityType.Label(), id, err)
	}

	switch format {
	case formatter.FormatJSON:
		return r.writeJSON(items, true)
	case formatter.FormatCSV:
		data, err := formatter.HistoryToCSV(items)
		if err != nil {
			return err
		}
		return r.writeBytes(data)
	case formatter.FormatMarkdown:
		return fmt.Errorf("%w: history supports text, csv and json", shared.ErrInvalidFlag)
	default:
		return r.writeBytes(formatter.HistoryToText(entityType, id, items))
	}
}

// CorrectionPending prints the id of an entity's pending correction.
func (r *Runner) CorrectionPending(ctx context.Context, cmd *cli.Command) error {
	entityType, id, err := entityArgs(cmd)
	if err != nil {
		return err
	}

	pending, err := r.engine.Pending(ctx, entityType, id)
	if err != nil {
		return fmt.Errorf("failed to load pending correction of %s #%d: %w", entityType.Label(), id, err)
	}

	if cmd.Bool("json") {
		return r.writeJSON(map[string]*int{"correction_id": pending}, false)
	}
	if pending == nil {
		return r.writePlain("No pending correction for %s #%d.\n", entityType.Label(), id)
	}
	return r.writePlain("Pending correction for %s #%d: #%d\n", entityType.Label(), id, *pending)
}

// CorrectionApprove approves a pending correction.
func (r *Runner) CorrectionApprove(ctx context.Context, cmd *cli.Command) error {
	return r.moderate(ctx, cmd, models.MethodApprove)
}

// CorrectionReject rejects a pending correction.
func (r *Runner) CorrectionReject(ctx context.Context, cmd *cli.Command) error {
	return r.moderate(ctx, cmd, models.MethodReject)
}

func (r *Runner) moderate(ctx context.Context, cmd *cli.Command, method models.HandleMethod) error {
	params, err := correctionParams(cmd)
	if err != nil {
		return err
	}

	if err := r.engine.Moderate(ctx, params.CorrectionID, method); err != nil {
		return err
	}
	return r.writePlain("✓ %s correction #%d\n", strings.TrimSuffix(string(method), "e")+"ed", params.CorrectionID)
}

// CorrectionOpen opens the correction's web page, or prints its address with --print.
func (r *Runner) CorrectionOpen(ctx context.Context, cmd *cli.Command) error {
	params, err := correctionParams(cmd)
	if err != nil {
		return err
	}

	target, err := shared.CorrectionURL(r.config.Web.BaseURL, params.CorrectionID, params.Compare)
	if err != nil {
		return err
	}

	if cmd.Bool("print") {
		return r.writePlain("%s\n", target)
	}

	r.logger.Info("opening browser", "url", target)
	if err := shared.OpenBrowser(target); err != nil {
		return fmt.Errorf("failed to open %s: %w", target, err)
	}
	return r.writePlain("Opened %s\n", target)
}
