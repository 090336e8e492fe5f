package handler

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/mbank/ledger/internal/domain"
	"github.com/mbank/ledger/internal/logging"
	"github.com/mbank/ledger/internal/service/ledger"
)

const (
	dateLayout        = "2006-01-02"
	maxStatementLimit = 1000
)

type statementQuery struct {
	filter domain.TypeFilter
	start  time.Time
	end    time.Time
	limit  int
}

// parseStatementQuery reads type, start, end and limit. Dates are either
// YYYY-MM-DD or RFC 3339; a bare end date covers that whole day.
func parseStatementQuery(r *http.Request) (statementQuery, []FieldError) {
	var (
		q    statementQuery
		errs []FieldError
	)
	v := r.URL.Query()

	if t := strings.ToUpper(strings.TrimSpace(v.Get("type"))); t != "" {
		q.filter = domain.TypeFilter(t)
		if !q.filter.IsValid() {
			errs = append(errs, FieldError{Field: "type", Message: "must be ALL, TRANSFER or a transaction type"})
		}
	}

	if s := v.Get("start"); s != "" {
		start, _, err := parseDate(s)
		if err != nil {
			errs = append(errs, FieldError{Field: "start", Message: "must be YYYY-MM-DD or RFC 3339"})
		}
		q.start = start
	}

	if s := v.Get("end"); s != "" {
		end, dateOnly, err := parseDate(s)
		if err != nil {
			errs = append(errs, FieldError{Field: "end", Message: "must be YYYY-MM-DD or RFC 3339"})
		}
		if dateOnly {
			end = end.Add(24*time.Hour - time.Nanosecond)
		}
		q.end = end
	}

	if s := v.Get("limit"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil || n <= 0 || n > maxStatementLimit {
			errs = append(errs, FieldError{Field: "limit", Message: "must be between 1 and 1000"})
		}
		q.limit = n
	}

	return q, errs
}

func parseDate(s string) (time.Time, bool, error) {
	if t, err := time.Parse(dateLayout, s); err == nil {
		return t.UTC(), true, nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, false, err
	}
	return t.UTC(), false, nil
}

func (h *LedgerHandler) Statement(w http.ResponseWriter, r *http.Request) {
	number, appErr := ownerFromPath(r)
	if appErr != nil {
		RespondAppError(w, appErr, nil)
		return
	}

	q, fields := parseStatementQuery(r)
	if len(fields) > 0 {
		RespondValidationError(w, fields)
		return
	}

	st, err := h.ledger.Statement(r.Context(), ledger.StatementRequest{
		Account: number,
		Filter:  q.filter,
		Start:   q.start,
		End:     q.end,
		Limit:   q.limit,
	})
	if err != nil {
		logging.FromContext(r.Context()).Warn("statement failed", "error", err)
		RespondDomainError(w, err)
		return
	}

	RespondSuccess(w, http.StatusOK, toStatementDTO(st))
}
