package utils

import (
	"encoding/json"
	"fmt"

	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/joseph-ayodele/roastume/internal/entity"
)

// ToPBReviewJob renders a job as a Struct using the job's JSON field names.
func ToPBReviewJob(j *entity.ReviewJob) (*structpb.Struct, error) {
	if j == nil {
		return nil, fmt.Errorf("nil review job")
	}
	b, err := json.Marshal(j)
	if err != nil {
		return nil, fmt.Errorf("marshal review job: %w", err)
	}
	var m map[string]any
	if err := json.Unmarshal(b, &m); err != nil {
		return nil, fmt.Errorf("unmarshal review job: %w", err)
	}
	return structpb.NewStruct(m)
}

// ToReviewJob is the inverse of ToPBReviewJob.
func ToReviewJob(s *structpb.Struct) (*entity.ReviewJob, error) {
	b, err := protojson.Marshal(s)
	if err != nil {
		return nil, fmt.Errorf("marshal struct: %w", err)
	}
	var j entity.ReviewJob
	if err := json.Unmarshal(b, &j); err != nil {
		return nil, fmt.Errorf("decode review job: %w", err)
	}
	return &j, nil
}

// StringField returns s[key] as a string, or "" when absent.
func StringField(s *structpb.Struct, key string) string {
	if s == nil {
		return ""
	}
	if v, ok := s.GetFields()[key]; ok {
		return v.GetStringValue()
	}
	return ""
}
