package sendaudit

import "fan-chat-assist/internal/domain"

// SendReport агрегирует записи аудита за отчётный период.
type SendReport struct {
	TotalPrepared  int     `json:"total_prepared"`
	TotalSent      int     `json:"total_sent"`
	PendingSends   int     `json:"pending_sends"`
	ComplianceRate float64 `json:"compliance_rate"`
}

// GenerateSendReport считает отчёт по записям в памяти за последние days
// дней, опционально только по одному фанату. Без подготовленных записей
// комплаенс-показатель равен 100.
func (t *Tracker) GenerateSendReport(fanID string, days int) SendReport {
	if days <= 0 {
		days = 7
	}
	cutoff := t.now().UTC().AddDate(0, 0, -days)

	t.mu.Lock()
	defer t.mu.Unlock()

	var report SendReport
	for _, rec := range t.records {
		if fanID != "" && rec.FanID != fanID {
			continue
		}
		if rec.PreparedAt.Before(cutoff) {
			continue
		}
		report.TotalPrepared++
		if rec.Status == domain.StatusSentManually {
			report.TotalSent++
		} else {
			report.PendingSends++
		}
	}

	if report.TotalPrepared == 0 {
		report.ComplianceRate = 100.0
	} else {
		report.ComplianceRate = float64(report.TotalSent) / float64(report.TotalPrepared) * 100
	}
	return report
}
