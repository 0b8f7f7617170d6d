package supabase

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/supabase-community/supabase-go"
)

type RealtimeClient struct {
	client *supabase.Client
}

func NewRealtimeClient(client *supabase.Client) *RealtimeClient {
	return &RealtimeClient{
		client: client,
	}
}

func (r *RealtimeClient) PublishEvent(channel string, event string, payload map[string]interface{}) error {
	// Supabase's Go client has no direct Realtime publish; job rows updated
	// through the database trigger Realtime automatically. Kept as the
	// single seam for explicit event publishing.
	return nil
}

func (r *RealtimeClient) PublishJobEvent(jobID uuid.UUID, event string, payload map[string]interface{}) error {
	channel := fmt.Sprintf("job:%s", jobID.String())
	return r.PublishEvent(channel, event, payload)
}

// Event payloads
func JobSubmittedPayload(jobID uuid.UUID, processID string) map[string]interface{} {
	return map[string]interface{}{
		"job_id":     jobID.String(),
		"status":     "processing",
		"process_id": processID,
	}
}

func JobCompletedPayload(jobID uuid.UUID, storageURL string) map[string]interface{} {
	return map[string]interface{}{
		"job_id":      jobID.String(),
		"status":      "completed",
		"progress":    100,
		"storage_url": storageURL,
	}
}

func JobFailedPayload(jobID uuid.UUID, errorMsg string) map[string]interface{} {
	return map[string]interface{}{
		"job_id": jobID.String(),
		"status": "failed",
		"error":  errorMsg,
	}
}
