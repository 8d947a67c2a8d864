package activity

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/go-monolith/mono"
	"github.com/go-monolith/mono/pkg/helper"
)

// ActivityPort gives other modules read access to activity feeds.
type ActivityPort interface {
	ListActivity(ctx context.Context, owner string) ([]Entry, error)
}

// ActivityAdapter implements ActivityPort using the service container.
type ActivityAdapter struct {
	container mono.ServiceContainer
}

// NewActivityAdapter creates a new ActivityAdapter.
func NewActivityAdapter(container mono.ServiceContainer) *ActivityAdapter {
	return &ActivityAdapter{container: container}
}

// ListActivity returns owner's recent activity, newest first.
func (a *ActivityAdapter) ListActivity(ctx context.Context, owner string) ([]Entry, error) {
	req := ListActivityRequest{Owner: owner}
	var resp ListActivityResponse

	if err := helper.CallRequestReplyService(
		ctx,
		a.container,
		"list-activity",
		json.Marshal,
		json.Unmarshal,
		&req,
		&resp,
	); err != nil {
		return nil, fmt.Errorf("list-activity request failed: %w", err)
	}

	if resp.Entries == nil {
		return []Entry{}, nil
	}
	return resp.Entries, nil
}
