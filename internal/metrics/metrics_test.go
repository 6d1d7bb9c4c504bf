package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestMetricsExist(t *testing.T) {
	tests := []struct {
		name   string
		metric interface{}
	}{
		{"HTTPRequestsTotal", HTTPRequestsTotal},
		{"HTTPRequestDuration", HTTPRequestDuration},
		{"HTTPRequestsInFlight", HTTPRequestsInFlight},
		{"UploadsAccepted", UploadsAccepted},
		{"UploadsRejected", UploadsRejected},
		{"UploadBytesReceived", UploadBytesReceived},
		{"NormalizationsTotal", NormalizationsTotal},
		{"NormalizationDuration", NormalizationDuration},
		{"TranscodeJobsTotal", TranscodeJobsTotal},
		{"TranscodeJobDuration", TranscodeJobDuration},
		{"TranscodeJobsInProgress", TranscodeJobsInProgress},
		{"TranscodeQueueDepth", TranscodeQueueDepth},
		{"StreamBytesSent", StreamBytesSent},
		{"StreamErrors", StreamErrors},
		{"DBQueryTotal", DBQueryTotal},
		{"DBQueryDuration", DBQueryDuration},
		{"AppInfo", AppInfo},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.metric == nil {
				t.Errorf("%s metric is nil", tt.name)
			}
		})
	}
}

func TestInitializeMetricsPopulatesSeries(t *testing.T) {
	InitializeMetrics()

	if got := testutil.CollectAndCount(UploadsRejected); got != 5 {
		t.Errorf("UploadsRejected series = %d, want 5", got)
	}
	if got := testutil.CollectAndCount(TranscodeJobsTotal); got < 2 {
		t.Errorf("TranscodeJobsTotal series = %d, want at least 2", got)
	}
	if got := testutil.CollectAndCount(DBQueryTotal); got != 6 {
		t.Errorf("DBQueryTotal series = %d, want 6", got)
	}
}
