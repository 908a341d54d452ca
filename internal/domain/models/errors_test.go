package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestAdmissionDenied_RetryAfterSeconds(t *testing.T) {
	assert.Equal(t, 1, (&AdmissionDenied{}).RetryAfterSeconds())
	assert.Equal(t, 1, (&AdmissionDenied{RetryAfter: 200 * time.Millisecond}).RetryAfterSeconds())
	assert.Equal(t, 3, (&AdmissionDenied{RetryAfter: 2001 * time.Millisecond}).RetryAfterSeconds())
	assert.Equal(t, 30, (&AdmissionDenied{RetryAfter: 30 * time.Second}).RetryAfterSeconds())
	assert.Contains(t, (&AdmissionDenied{CallerID: "10.0.0.1"}).Error(), "10.0.0.1")
}
