package server

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"

	"github.com/joseph-ayodele/roastume/constants"
	"github.com/joseph-ayodele/roastume/internal/common"
	"github.com/joseph-ayodele/roastume/internal/entity"
	"github.com/joseph-ayodele/roastume/internal/utils"
)

// ReviewProcessor is the part of core.Processor the transport needs.
type ReviewProcessor interface {
	Submit(ctx context.Context, content []byte) (*entity.ReviewJob, error)
	GetJob(ctx context.Context, id string) (*entity.ReviewJob, error)
	ExportXLSX(ctx context.Context, id string) ([]byte, error)
}

type ReviewService struct {
	proc     ReviewProcessor
	maxBytes int
	logger   *slog.Logger
}

func NewReviewService(proc ReviewProcessor, maxBytes int, logger *slog.Logger) *ReviewService {
	if logger == nil {
		logger = slog.Default()
	}
	if maxBytes <= 0 {
		maxBytes = constants.MaxUploadBytes
	}
	return &ReviewService{proc: proc, maxBytes: maxBytes, logger: logger}
}

func (s *ReviewService) Upload(ctx context.Context, req *wrapperspb.BytesValue) (*structpb.Struct, error) {
	content := req.GetValue()
	v := common.NewValidator().
		Field("file", content, common.Required, common.MaxBytes(s.maxBytes), common.PDFContent)
	if err := common.ValidateAndReturnError(v); err != nil {
		s.logger.Warn("upload rejected", "bytes", len(content), "reason", v.ErrorMessage())
		return nil, err
	}

	job, err := s.proc.Submit(ctx, content)
	if err != nil {
		s.logger.Error("failed to create review job", "error", err)
		return nil, common.ToStatus(err)
	}
	s.logger.Info("review job accepted", "job_id", job.ID, "bytes", len(content), "status", job.Status)

	return structpb.NewStruct(map[string]any{
		"review_id": job.ID,
		"message":   constants.MsgUploadSuccess,
		"status":    job.Status.String(),
	})
}

func (s *ReviewService) GetReview(ctx context.Context, req *wrapperspb.StringValue) (*structpb.Struct, error) {
	id := strings.TrimSpace(req.GetValue())
	if id == "" {
		return nil, common.InvalidArgumentError("review_id is required")
	}
	job, err := s.proc.GetJob(ctx, id)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return nil, common.NotFoundError(constants.MsgReviewNotFound)
		}
		s.logger.Error("failed to get review job", "job_id", id, "error", err)
		return nil, common.ToStatus(err)
	}
	out, err := utils.ToPBReviewJob(job)
	if err != nil {
		return nil, common.InternalErrorf("encode review: %v", err)
	}
	return out, nil
}

func (s *ReviewService) ExportReview(ctx context.Context, req *wrapperspb.StringValue) (*wrapperspb.BytesValue, error) {
	id := strings.TrimSpace(req.GetValue())
	if id == "" {
		return nil, common.InvalidArgumentError("review_id is required")
	}
	xlsx, err := s.proc.ExportXLSX(ctx, id)
	switch {
	case err == nil:
	case errors.Is(err, common.ErrNotFound):
		return nil, common.NotFoundError(constants.MsgReviewNotFound)
	case errors.Is(err, common.ErrFailedPrecondition):
		return nil, status.Error(codes.FailedPrecondition, constants.MsgNotCompleted)
	default:
		s.logger.Error("export.xlsx.failed", "job_id", id, "err", err)
		return nil, common.ToStatus(err)
	}
	return wrapperspb.Bytes(xlsx), nil
}
