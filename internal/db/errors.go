package db

import "errors"

var (
	ErrProjectNotFound      = errors.New("project not found")
	ErrConversationNotFound = errors.New("conversation not found")
	ErrDuplicateKeyword     = errors.New("keyword already tracked")
	ErrKeywordNotFound      = errors.New("tracked keyword not found")
)
