package toolapi

import (
	"context"
	"fmt"
	"net/http"

	"github.com/bytedance/sonic"

	errx "github.com/Formflow-core-poc-v1/server/internal/core/error"
)

// UploadPhase tracks how far a two-phase upload progressed.
type UploadPhase string

const (
	UploadPhaseCreated  UploadPhase = "created"
	UploadPhaseUploaded UploadPhase = "uploaded"
	UploadPhaseFailed   UploadPhase = "failed"
)

// UploadSaga is the explicit state of one create-then-put upload. When the
// put fails after the create succeeded, Compensate deletes the created
// resource so the backend is not left with an orphan.
type UploadSaga struct {
	Phase      UploadPhase
	DocumentID string
	UploadURL  string
	Compensate func(ctx context.Context) error
}

// createResponse tolerates both key spellings the backend has used for the
// pre-signed destination.
type createResponse struct {
	ID            string `json:"id"`
	UploadURL     string `json:"upload_url"`
	UploadURLCaml string `json:"uploadUrl"`
}

func (r createResponse) url() string {
	if r.UploadURL != "" {
		return r.UploadURL
	}
	return r.UploadURLCaml
}

// Upload runs the two-phase document upload: create the document record,
// then PUT the binary content to the returned pre-signed URL. On a phase-two
// failure the created document is deleted before the error is surfaced; a
// failing compensation is logged and otherwise ignored.
func (c *Client) Upload(ctx context.Context, name string, payload []byte) (string, error) {
	saga, err := c.createDocument(ctx, name)
	if err != nil {
		return "", err
	}

	if err := c.putContent(ctx, saga, payload); err != nil {
		if cerr := saga.Compensate(ctx); cerr != nil {
			c.log.Warn().Err(cerr).
				Str("document_id", saga.DocumentID).
				Msg("compensating delete failed")
		}
		return "", err
	}

	return saga.DocumentID, nil
}

func (c *Client) createDocument(ctx context.Context, name string) (*UploadSaga, error) {
	body, err := sonic.Marshal(map[string]string{"name": name})
	if err != nil {
		return nil, errx.WrapToolAPI(err, 0)
	}

	status, respBody, err := c.do(ctx, http.MethodPost, c.baseURL+"/documents", body, "application/json")
	if err != nil {
		return nil, errx.WrapToolAPI(err, 0)
	}
	if status < 200 || status > 299 {
		return nil, errx.WrapToolAPI(fmt.Errorf("create document: %s", errorText(status, respBody)), status)
	}

	var created createResponse
	if err := sonic.Unmarshal(respBody, &created); err != nil {
		return nil, errx.WrapToolAPI(fmt.Errorf("decode create response: %w", err), 0)
	}
	if created.ID == "" || created.url() == "" {
		return nil, errx.WrapToolAPI(fmt.Errorf("create response missing id or upload url"), 0)
	}

	return &UploadSaga{
		Phase:      UploadPhaseCreated,
		DocumentID: created.ID,
		UploadURL:  created.url(),
		Compensate: func(ctx context.Context) error {
			return c.deleteDocument(ctx, created.ID)
		},
	}, nil
}

func (c *Client) putContent(ctx context.Context, saga *UploadSaga, payload []byte) error {
	status, respBody, err := c.do(ctx, http.MethodPut, saga.UploadURL, payload, "application/octet-stream")
	if err != nil {
		saga.Phase = UploadPhaseFailed
		return errx.WrapToolAPI(err, 0)
	}
	if status < 200 || status > 299 {
		saga.Phase = UploadPhaseFailed
		return errx.WrapToolAPI(fmt.Errorf("upload content: %s", errorText(status, respBody)), status)
	}
	saga.Phase = UploadPhaseUploaded
	return nil
}

func (c *Client) deleteDocument(ctx context.Context, id string) error {
	status, respBody, err := c.do(ctx, http.MethodDelete, c.baseURL+"/documents/"+id, nil, "")
	if err != nil {
		return err
	}
	if status < 200 || status > 299 {
		return fmt.Errorf("delete document %s: %s", id, errorText(status, respBody))
	}
	return nil
}
