package access

// Service answers whether a Telegram user may operate the bot. The set is
// fixed at startup from configuration.
type Service struct {
	operators map[int64]struct{}
}

func NewService(operatorIDs []int64) *Service {
	operators := make(map[int64]struct{}, len(operatorIDs))
	for _, id := range operatorIDs {
		if id > 0 {
			operators[id] = struct{}{}
		}
	}
	return &Service{operators: operators}
}

func (s *Service) IsOperator(tgID int64) bool {
	if s == nil || tgID <= 0 {
		return false
	}
	_, ok := s.operators[tgID]
	return ok
}

func (s *Service) Count() int {
	if s == nil {
		return 0
	}
	return len(s.operators)
}
