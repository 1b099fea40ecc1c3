package config

import (
	"fmt"
)

type CacheKeyStruct struct{}

func NewCacheKeyStruct() *CacheKeyStruct {
	return &CacheKeyStruct{}
}

// SessionsCollection is the hash holding every session record, keyed by
// session id, as full JSON documents.
func (r *CacheKeyStruct) SessionsCollection() string {
	return "testSessions"
}

// CurrentSessionKey returns the singleton pointer to a candidate's
// in-progress session.
func (r *CacheKeyStruct) CurrentSessionKey(email string) string {
	return fmt.Sprintf("currentSession:%s", email)
}

// SessionLookupKey indexes a session id by quiz and candidate email.
func (r *CacheKeyStruct) SessionLookupKey(quizID, email string) string {
	return fmt.Sprintf("session:lookup:%s:%s", quizID, email)
}

// SessionEventsChannel is the pub/sub channel where every session write
// is announced for reporting views.
func (r *CacheKeyStruct) SessionEventsChannel() string {
	return "sessions:events"
}

// QuizPayloadKey returns the cache key for a quiz's candidate payload.
func (r *CacheKeyStruct) QuizPayloadKey(quizID string) string {
	return fmt.Sprintf("quiz:%s:payload", quizID)
}

// QuizAnswerKey returns the cache key for a quiz's correct-answer hash.
func (r *CacheKeyStruct) QuizAnswerKey(quizID string) string {
	return fmt.Sprintf("quiz:%s:key", quizID)
}

var CacheKey = NewCacheKeyStruct()
