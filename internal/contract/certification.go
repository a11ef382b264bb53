package contract

import (
	"context"

	"github.com/Boiya123/agritrack-ledger/internal/contract/model"
	"go.uber.org/zap"
)

// IssueCertificationParams are the caller-supplied fields for
// IssueCertification.
type IssueCertificationParams struct {
	ID           string
	ProcessingID string
	CertType     string
	IssuedDate   string
	ExpiryDate   string
	IssuerID     string
	Notes        string
}

// IssueCertification issues a certification against a processing record.
// Inspector only. Certifications are issued directly APPROVED, which is
// terminal: an issued certification's status can never change again.
func (e *Engine) IssueCertification(ctx context.Context, call Call, p IssueCertificationParams) (*model.Certification, error) {
	if err := Authorize(call.Role, model.RoleInspector); err != nil {
		return nil, err
	}
	if err := NonEmpty(p.ID, "id"); err != nil {
		return nil, err
	}
	if err := NonEmpty(p.ProcessingID, "processing_id"); err != nil {
		return nil, err
	}
	if err := NonEmpty(p.CertType, "cert_type"); err != nil {
		return nil, err
	}

	t := e.begin(ctx, call)
	if _, err := processings.get(t, p.ProcessingID); err != nil {
		return nil, err
	}

	cert := &model.Certification{
		Kind:         model.KindCertification,
		ID:           p.ID,
		ProcessingID: p.ProcessingID,
		CertType:     p.CertType,
		Status:       model.StatusApproved,
		IssuedDate:   p.IssuedDate,
		ExpiryDate:   p.ExpiryDate,
		IssuerID:     p.IssuerID,
		Notes:        p.Notes,
		CreatedAt:    call.Timestamp,
		UpdatedAt:    call.Timestamp,
	}
	if err := certifications.insert(t, p.ID, cert); err != nil {
		return nil, err
	}
	if err := certsByProcessing.add(t, p.ProcessingID, p.ID); err != nil {
		return nil, err
	}

	t.emit(model.EventCertificationUpdated, map[string]string{
		"certification_id": p.ID,
		"processing_id":    p.ProcessingID,
		"status":           string(model.StatusApproved),
	})
	if err := e.commit(t); err != nil {
		return nil, err
	}

	e.logger.Info("certification issued",
		zap.String("certification_id", p.ID),
		zap.String("processing_id", p.ProcessingID),
	)
	return cert, nil
}

// GetCertification retrieves a certification by ID.
func (e *Engine) GetCertification(ctx context.Context, id string) (*model.Certification, error) {
	if err := NonEmpty(id, "id"); err != nil {
		return nil, err
	}
	return certifications.get(e.read(ctx), id)
}

// UpdateCertificationStatus moves a certification through its status
// machine. Inspector only.
func (e *Engine) UpdateCertificationStatus(ctx context.Context, call Call, id string, next model.Status) (*model.Certification, error) {
	if err := Authorize(call.Role, model.RoleInspector); err != nil {
		return nil, err
	}
	if err := NonEmpty(id, "id"); err != nil {
		return nil, err
	}

	t := e.begin(ctx, call)
	cert, err := certifications.get(t, id)
	if err != nil {
		return nil, err
	}
	if err := ValidateTransition(model.KindCertification, cert.Status, next); err != nil {
		return nil, err
	}

	cert.Status = next
	cert.UpdatedAt = call.Timestamp
	if err := certifications.save(t, id, cert); err != nil {
		return nil, err
	}

	t.emit(model.EventCertificationUpdated, map[string]string{
		"certification_id": id,
		"status":           string(next),
	})
	if err := e.commit(t); err != nil {
		return nil, err
	}

	e.logger.Info("certification status changed",
		zap.String("certification_id", id),
		zap.String("status", string(next)),
	)
	return cert, nil
}

// GetCertificationsByProcessing returns a processing record's
// certifications in issue order.
func (e *Engine) GetCertificationsByProcessing(ctx context.Context, processingID string) ([]*model.Certification, error) {
	if err := NonEmpty(processingID, "processing_id"); err != nil {
		return nil, err
	}
	t := e.read(ctx)
	ids, err := certsByProcessing.list(t, processingID)
	if err != nil {
		return nil, err
	}
	out := make([]*model.Certification, 0, len(ids))
	for _, id := range ids {
		c, err := certifications.get(t, id)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, nil
}
