package http

import (
	"net/http"
	"time"

	"resourceguardian/internal/core"
	"resourceguardian/internal/storage"
)

type transactionRequest struct {
	Amount          core.Money `json:"amount"`
	Type            string     `json:"type"`
	Category        string     `json:"category"`
	Source          string     `json:"source"`
	Status          string     `json:"status"`
	Description     string     `json:"description"`
	Merchant        string     `json:"merchant"`
	Location        string     `json:"location"`
	Notes           string     `json:"notes"`
	TransactionDate *time.Time `json:"transactionDate"`
}

func (req transactionRequest) toTransaction(id, userID int64) *core.Transaction {
	t := &core.Transaction{
		ID:          id,
		UserID:      userID,
		Amount:      req.Amount,
		Type:        core.TransactionType(req.Type),
		Category:    core.TransactionCategory(req.Category),
		Source:      core.TransactionSource(req.Source),
		Status:      core.TransactionStatus(req.Status),
		Description: req.Description,
		Merchant:    req.Merchant,
		Location:    req.Location,
		Notes:       req.Notes,
	}
	if req.TransactionDate != nil {
		t.TransactionDate = *req.TransactionDate
	}
	return t
}

func (s *Server) handleCreateTransaction(w http.ResponseWriter, r *http.Request) {
	var req transactionRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	t, err := s.transactions.Record(r.Context(), req.toTransaction(0, userID(r)))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, t)
}

func transactionFilterFromQuery(r *http.Request) (storage.TransactionFilter, error) {
	var f storage.TransactionFilter
	q := r.URL.Query()

	if v := q.Get("type"); v != "" {
		parsed, err := core.ParseTransactionType(v)
		if err != nil {
			return f, err
		}
		f.Type = parsed
	}
	if v := q.Get("category"); v != "" {
		parsed, err := core.ParseTransactionCategory(v)
		if err != nil {
			return f, err
		}
		f.Category = parsed
	}
	if v := q.Get("source"); v != "" {
		parsed, err := core.ParseTransactionSource(v)
		if err != nil {
			return f, err
		}
		f.Source = parsed
	}
	if v := q.Get("status"); v != "" {
		parsed, err := core.ParseTransactionStatus(v)
		if err != nil {
			return f, err
		}
		f.Status = parsed
	}

	from, err := queryDate(r, "from")
	if err != nil {
		return f, err
	}
	f.From = from

	to, err := queryDate(r, "to")
	if err != nil {
		return f, err
	}
	f.To = to

	minAmount, err := queryMoney(r, "minAmount")
	if err != nil {
		return f, err
	}
	f.MinAmount = minAmount

	maxAmount, err := queryMoney(r, "maxAmount")
	if err != nil {
		return f, err
	}
	f.MaxAmount = maxAmount

	f.Search = q.Get("search")

	limit, err := queryInt(r, "limit", 0)
	if err != nil {
		return f, err
	}
	f.Limit = limit

	return f, nil
}

func (s *Server) handleListTransactions(w http.ResponseWriter, r *http.Request) {
	filter, err := transactionFilterFromQuery(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	s.writeTransactions(w, r, filter)
}

func (s *Server) handleRecentTransactions(w http.ResponseWriter, r *http.Request) {
	limit, err := queryInt(r, "limit", 0)
	if err != nil {
		writeError(w, r, err)
		return
	}

	list, err := s.transactions.Recent(r.Context(), userID(r), limit)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if list == nil {
		list = []core.Transaction{}
	}
	writeJSON(w, http.StatusOK, list)
}

func (s *Server) handlePendingTransactions(w http.ResponseWriter, r *http.Request) {
	s.writeTransactions(w, r, storage.TransactionFilter{Status: core.StatusPending})
}

func (s *Server) handleSearchTransactions(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query().Get("q")
	if q == "" {
		q = r.URL.Query().Get("search")
	}
	if q == "" {
		writeError(w, r, core.Validationf("q", "missing search term"))
		return
	}
	s.writeTransactions(w, r, storage.TransactionFilter{Search: q})
}

func (s *Server) handleDateRangeTransactions(w http.ResponseWriter, r *http.Request) {
	from, err := queryDate(r, "from")
	if err != nil {
		writeError(w, r, err)
		return
	}
	to, err := queryDate(r, "to")
	if err != nil {
		writeError(w, r, err)
		return
	}
	if from == nil || to == nil {
		writeError(w, r, core.Validationf("from", "both from and to dates are required"))
		return
	}
	s.writeTransactions(w, r, storage.TransactionFilter{From: from, To: to})
}

func (s *Server) handleAmountRangeTransactions(w http.ResponseWriter, r *http.Request) {
	minAmount, err := queryMoney(r, "min")
	if err != nil {
		writeError(w, r, err)
		return
	}
	maxAmount, err := queryMoney(r, "max")
	if err != nil {
		writeError(w, r, err)
		return
	}
	if minAmount == nil && maxAmount == nil {
		writeError(w, r, core.Validationf("min", "at least one of min and max is required"))
		return
	}
	s.writeTransactions(w, r, storage.TransactionFilter{MinAmount: minAmount, MaxAmount: maxAmount})
}

func (s *Server) writeTransactions(w http.ResponseWriter, r *http.Request, filter storage.TransactionFilter) {
	list, err := s.transactions.List(r.Context(), userID(r), filter)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if list == nil {
		list = []core.Transaction{}
	}
	writeJSON(w, http.StatusOK, list)
}

func (s *Server) handleGetTransaction(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	t, err := s.transactions.Get(r.Context(), id, userID(r))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, t)
}

func (s *Server) handleUpdateTransaction(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	var req transactionRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	t, err := s.transactions.Update(r.Context(), userID(r), req.toTransaction(id, userID(r)))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, t)
}

type statusRequest struct {
	Status string `json:"status"`
}

func (s *Server) handleUpdateTransactionStatus(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	var req statusRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	t, err := s.transactions.UpdateStatus(r.Context(), id, userID(r), core.TransactionStatus(req.Status))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, t)
}

func (s *Server) handleDeleteTransaction(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	if err := s.transactions.Delete(r.Context(), id, userID(r)); err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusNoContent, nil)
}

func (s *Server) handleMonthlySummary(w http.ResponseWriter, r *http.Request) {
	year, month, err := queryYearMonth(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	summary, err := s.transactions.MonthlySummary(r.Context(), userID(r), year, month)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, summary)
}

func (s *Server) handleCategorySummary(w http.ResponseWriter, r *http.Request) {
	from, err := queryDate(r, "from")
	if err != nil {
		writeError(w, r, err)
		return
	}
	to, err := queryDate(r, "to")
	if err != nil {
		writeError(w, r, err)
		return
	}

	summary, err := s.transactions.CategorySummary(r.Context(), userID(r), from, to)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, summary)
}

func (s *Server) handleStatistics(w http.ResponseWriter, r *http.Request) {
	stats, err := s.transactions.Statistics(r.Context(), userID(r))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

func (s *Server) handlePaymentNotification(w http.ResponseWriter, r *http.Request) {
	var n core.PaymentNotification
	if err := decodeJSON(r, &n); err != nil {
		writeError(w, r, err)
		return
	}

	t, err := s.transactions.RecordFromPaymentNotification(r.Context(), userID(r), n)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, t)
}
