// Package review hands finished extractions to humans: a webhook post
// for the review UI and an upsert into the Notion review board.
package review

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/jomei/notionapi"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/sells-group/lease-abstract-cli/internal/config"
	"github.com/sells-group/lease-abstract-cli/internal/model"
	"github.com/sells-group/lease-abstract-cli/internal/resilience"
	"github.com/sells-group/lease-abstract-cli/pkg/notion"
)

var webhookClient = &http.Client{Timeout: 10 * time.Second}

// boardTitleProperty is the title column of the Notion review board.
const boardTitleProperty = "Document"

// Notifier pushes completed pipeline results to the configured review
// sinks. Unconfigured sinks are skipped.
type Notifier struct {
	cfg          config.ReviewConfig
	notionClient notion.Client
	retry        resilience.RetryConfig
}

// New builds a Notifier from review config, creating a Notion client
// when a token is configured.
func New(cfg config.ReviewConfig) *Notifier {
	n := &Notifier{cfg: cfg, retry: webhookRetryConfig()}
	if cfg.NotionToken != "" {
		n.notionClient = notion.NewClient(cfg.NotionToken)
	}
	return n
}

// NewWithClient builds a Notifier with an injected Notion client.
func NewWithClient(cfg config.ReviewConfig, client notion.Client) *Notifier {
	return &Notifier{cfg: cfg, notionClient: client, retry: webhookRetryConfig()}
}

func webhookRetryConfig() resilience.RetryConfig {
	retry := resilience.DefaultRetryConfig()
	retry.OnRetry = resilience.RetryLogger("review", "webhook")
	return retry
}

// Enabled reports whether at least one sink is configured.
func (n *Notifier) Enabled() bool {
	return n.cfg.WebhookURL != "" || (n.notionClient != nil && n.cfg.NotionDatabase != "")
}

// Notify fans the result out to each configured sink. The sinks are
// independent, so both are attempted even when one fails; failures are
// logged and the first one is returned.
func (n *Notifier) Notify(ctx context.Context, result *model.PipelineResult) error {
	var webhookErr, notionErr error

	g, gCtx := errgroup.WithContext(ctx)

	if n.cfg.WebhookURL != "" {
		g.Go(func() error {
			if webhookErr = n.sendWebhook(gCtx, result); webhookErr != nil {
				zap.L().Warn("review: webhook failed",
					zap.String("document", result.Filename),
					zap.Error(webhookErr),
				)
			}
			return nil
		})
	}

	if n.notionClient != nil && n.cfg.NotionDatabase != "" {
		g.Go(func() error {
			if notionErr = n.upsertBoard(gCtx, result); notionErr != nil {
				zap.L().Warn("review: notion upsert failed",
					zap.String("document", result.Filename),
					zap.Error(notionErr),
				)
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return err
	}
	if webhookErr != nil {
		return webhookErr
	}
	return notionErr
}

// sendWebhook posts the result, retrying transient statuses so a
// briefly unavailable review UI does not drop the handoff.
func (n *Notifier) sendWebhook(ctx context.Context, result *model.PipelineResult) error {
	payload, err := json.Marshal(result)
	if err != nil {
		return eris.Wrap(err, "review: marshal webhook payload")
	}

	return resilience.Do(ctx, n.retry, func(ctx context.Context) error {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.cfg.WebhookURL, bytes.NewReader(payload))
		if err != nil {
			return eris.Wrap(err, "review: create webhook request")
		}
		req.Header.Set("Content-Type", "application/json")

		resp, err := webhookClient.Do(req)
		if err != nil {
			return eris.Wrap(err, "review: webhook request failed")
		}
		defer resp.Body.Close() //nolint:errcheck

		if resp.StatusCode < 200 || resp.StatusCode >= 300 {
			statusErr := eris.Errorf("review: webhook returned status %d", resp.StatusCode)
			if resilience.IsTransientHTTPStatus(resp.StatusCode) {
				return resilience.NewTransientError(statusErr, resp.StatusCode)
			}
			return statusErr
		}
		return nil
	})
}

// upsertBoard writes the result to the Notion board, updating the
// document's existing page when one exists so re-runs do not pile up
// duplicate rows.
func (n *Notifier) upsertBoard(ctx context.Context, result *model.PipelineResult) error {
	props := boardProperties(result)

	existing, err := notion.FindPageByTitle(ctx, n.notionClient, n.cfg.NotionDatabase, boardTitleProperty, result.Filename)
	if err != nil {
		return err
	}

	if existing != nil {
		_, err = n.notionClient.UpdatePage(ctx, string(existing.ID), &notionapi.PageUpdateRequest{
			Properties: props,
		})
		return eris.Wrap(err, "review: update board page")
	}

	_, err = n.notionClient.CreatePage(ctx, &notionapi.PageCreateRequest{
		Parent: notionapi.Parent{
			Type:       notionapi.ParentTypeDatabaseID,
			DatabaseID: notionapi.DatabaseID(n.cfg.NotionDatabase),
		},
		Properties: props,
	})
	return eris.Wrap(err, "review: create board page")
}

// boardStatus classifies a result for the board's Status column. Any
// failed or flagged check, or any extraction problem, routes the
// document to a reviewer.
func boardStatus(result *model.PipelineResult) string {
	if len(result.Errors) > 0 {
		return "Needs Review"
	}
	for _, o := range result.Outcomes {
		if o.Status == model.CheckFail || o.Status == model.CheckFlag {
			return "Needs Review"
		}
	}
	return "Extracted"
}

func boardProperties(result *model.PipelineResult) notionapi.Properties {
	var pass, flag, fail int
	for _, o := range result.Outcomes {
		switch o.Status {
		case model.CheckPass:
			pass++
		case model.CheckFlag:
			flag++
		case model.CheckFail:
			fail++
		}
	}

	var extracted int
	for _, rec := range result.Records {
		if !rec.Effective().IsNull() {
			extracted++
		}
	}

	leaseType := "unknown"
	if m := result.Metric(model.FieldLeaseType); m != nil && !m.Effective().IsNull() {
		leaseType = m.Effective().Display()
	}

	now := notionapi.Date(time.Now())
	return notionapi.Properties{
		boardTitleProperty: notionapi.TitleProperty{
			Type: notionapi.PropertyTypeTitle,
			Title: []notionapi.RichText{
				{Type: notionapi.ObjectTypeText, Text: &notionapi.Text{Content: result.Filename}},
			},
		},
		"Status": notionapi.StatusProperty{
			Status: notionapi.Status{Name: boardStatus(result)},
		},
		"Lease Type": notionapi.RichTextProperty{
			Type: notionapi.PropertyTypeRichText,
			RichText: []notionapi.RichText{
				{Type: notionapi.ObjectTypeText, Text: &notionapi.Text{Content: leaseType}},
			},
		},
		"Fields Extracted": notionapi.NumberProperty{Number: float64(extracted)},
		"Checks Passed":    notionapi.NumberProperty{Number: float64(pass)},
		"Checks Flagged":   notionapi.NumberProperty{Number: float64(flag)},
		"Checks Failed":    notionapi.NumberProperty{Number: float64(fail)},
		"Pages":            notionapi.NumberProperty{Number: float64(result.PageCount)},
		"Last Extracted": notionapi.DateProperty{
			Date: &notionapi.DateObject{Start: &now},
		},
	}
}
