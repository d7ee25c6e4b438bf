package service

const (
	// Pagination limits
	DefaultHistoryLimit = 20
)
