package conteo

import (
	"github.com/jhoicas/conteo-inventario/internal/application/dto"
	"github.com/jhoicas/conteo-inventario/internal/domain/entity"
)

func toSessionResponse(s *entity.SectorSession) dto.SessionResponse {
	return dto.SessionResponse{
		ID:        s.ID,
		CompanyID: s.CompanyID,
		EventID:   s.EventID,
		Kind:      string(s.Kind),
		SectorID:  s.SectorID,
		State:     string(s.State),
		Assignee1: s.Assignee1,
		Assignee2: s.Assignee2,
		CreatedBy: s.CreatedBy,
		ClosedBy:  s.ClosedBy,
		StartedAt: s.StartedAt,
		ClosedAt:  s.ClosedAt,
		CreatedAt: s.CreatedAt,
		UpdatedAt: s.UpdatedAt,
	}
}

func toSessionList(sessions []*entity.SectorSession) []dto.SessionResponse {
	out := make([]dto.SessionResponse, 0, len(sessions))
	for _, s := range sessions {
		out = append(out, toSessionResponse(s))
	}
	return out
}

func toEntryResponse(e *entity.CountEntry) dto.CountEntryResponse {
	return dto.CountEntryResponse{
		ID:            e.ID,
		SessionID:     e.SessionID,
		ProductID:     e.ProductID,
		Count1:        e.Count1,
		Count1By:      e.Count1By,
		Count2:        e.Count2,
		Count2By:      e.Count2By,
		Difference:    e.Difference,
		State:         string(e.State),
		CurrentRound:  e.CurrentRound,
		FinalQuantity: e.FinalQuantity,
		Resolution:    string(e.Resolution),
		UpdatedAt:     e.UpdatedAt,
	}
}

func toEntryList(entries []*entity.CountEntry) []dto.CountEntryResponse {
	out := make([]dto.CountEntryResponse, 0, len(entries))
	for _, e := range entries {
		out = append(out, toEntryResponse(e))
	}
	return out
}

func toSubmissionResponse(s *entity.RecountSubmission) dto.RecountSubmissionResponse {
	return dto.RecountSubmissionResponse{
		ID:          s.ID,
		RoundNumber: s.RoundNumber,
		ProductID:   s.ProductID,
		UserID:      s.UserID,
		Quantity:    s.Quantity,
		Retracted:   s.Retracted,
		RetractedBy: s.RetractedBy,
		RetractedAt: s.RetractedAt,
		CreatedAt:   s.CreatedAt,
	}
}

func toRoundResponse(r *entity.RecountRound, subs []*entity.RecountSubmission) dto.RecountRoundResponse {
	out := dto.RecountRoundResponse{
		ID:               r.ID,
		ProductID:        r.ProductID,
		RoundNumber:      r.RoundNumber,
		OpenedBy:         r.OpenedBy,
		PreviousCount1:   r.PreviousCount1,
		PreviousCount2:   r.PreviousCount2,
		Status:           string(r.Status),
		ResolvedQuantity: r.ResolvedQuantity,
	}
	for _, s := range subs {
		out.Submissions = append(out.Submissions, toSubmissionResponse(s))
	}
	return out
}

func toAuditResponse(a *entity.AuditRecord) dto.AuditRecordResponse {
	return dto.AuditRecordResponse{
		ID:               a.ID,
		SessionID:        a.SessionID,
		EventID:          a.EventID,
		SectorID:         a.SectorID,
		ProductID:        a.ProductID,
		PreviousQuantity: a.PreviousQuantity,
		NewQuantity:      a.NewQuantity,
		Delta:            a.Delta,
		Resolution:       string(a.Resolution),
		UserID:           a.UserID,
		CreatedAt:        a.CreatedAt,
	}
}

func toAuditList(records []*entity.AuditRecord) []dto.AuditRecordResponse {
	out := make([]dto.AuditRecordResponse, 0, len(records))
	for _, a := range records {
		out = append(out, toAuditResponse(a))
	}
	return out
}
