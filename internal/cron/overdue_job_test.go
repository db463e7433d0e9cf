package cron

import (
	"context"
	"errors"
	"testing"
	"time"

	"toolrent/internal/domains/booking/mocks"

	"github.com/stretchr/testify/assert"
	"go.uber.org/mock/gomock"
)

func TestOverdueJob_Run(t *testing.T) {
	now := time.Date(2025, 3, 10, 8, 30, 0, 0, time.UTC)

	tests := []struct {
		name    string
		updated int
		err     error
		wantErr bool
	}{
		{name: "scan updates items", updated: 3},
		{name: "nothing overdue", updated: 0},
		{name: "scan fails", err: errors.New("db down"), wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			bookings := mocks.NewMockBookingService(ctrl)
			bookings.EXPECT().ScanOverdue(gomock.Any(), now).Return(tt.updated, tt.err)

			job := NewOverdueJob(bookings)
			job.now = func() time.Time { return now }

			err := job.Run(context.Background())

			assert.Equal(t, overdueJobName, job.Name())
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
