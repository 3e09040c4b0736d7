package payout

import (
	"context"
	"fmt"

	"github.com/venuehq/payouts/pkg/domain"
	"github.com/venuehq/payouts/pkg/dto"
)

// Bulk applies one operation across a set of request ids. Items are
// processed independently: each runs in its own transaction, a failing item
// is recorded and the run continues. Success+Failed always equals the number
// of ids submitted.
func (s *Service) Bulk(
	ctx context.Context,
	op dto.BulkOperation,
	actor domain.Actor,
) (*dto.BulkResult, error) {
	switch op.Operation {
	case dto.BulkApproveRequests, dto.BulkRejectRequests,
		dto.BulkProcessPayouts, dto.BulkCancelRequests:
	default:
		return nil, fmt.Errorf("unknown bulk operation %q", op.Operation)
	}

	result := &dto.BulkResult{Errors: []string{}}
	for _, id := range op.IDs {
		var err error
		switch op.Operation {
		case dto.BulkApproveRequests:
			_, err = s.Approve(ctx, id, op.Reason, actor)
		case dto.BulkRejectRequests:
			_, err = s.Reject(ctx, id, op.Reason, actor)
		case dto.BulkCancelRequests:
			_, err = s.Cancel(ctx, id, op.Reason, actor)
		case dto.BulkProcessPayouts:
			var data dto.ProcessPayout
			if op.Data != nil {
				data = *op.Data
			}
			_, err = s.Process(ctx, id, data, actor)
		}
		if err != nil {
			result.Failed++
			result.Errors = append(result.Errors, fmt.Sprintf("%s: %s", id, err))
			continue
		}
		result.Success++
	}

	s.logger.Info("bulk operation finished",
		"operation", op.Operation,
		"success", result.Success,
		"failed", result.Failed,
	)
	return result, nil
}
