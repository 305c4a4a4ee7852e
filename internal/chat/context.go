package chat

import (
	"context"
	"fmt"
	"strings"
)

// BuildContext merges every file attached to the session into one
// augmentation block, one labeled section per file in upload order.
// Returns "" when the session has no files.
func (s *Service) BuildContext(ctx context.Context, sessionID string) (string, error) {
	fcs, err := s.repo.ListFileContexts(ctx, sessionID)
	if err != nil {
		return "", err
	}
	if len(fcs) == 0 {
		return "", nil
	}

	blocks := make([]string, 0, len(fcs))
	for _, fc := range fcs {
		blocks = append(blocks, fmt.Sprintf("[File: %s]\n%s", fc.Filename, fc.Content))
	}
	return strings.Join(blocks, "\n\n"), nil
}
