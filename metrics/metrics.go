package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

var FilesCompleted = prometheus.NewCounter(prometheus.CounterOpts{
	Name: "sync_files_completed_total",
})
var FilesFailed = prometheus.NewCounter(prometheus.CounterOpts{
	Name: "sync_files_failed_total",
})
var FilesSkipped = prometheus.NewCounterVec(prometheus.CounterOpts{
	Name: "sync_files_skipped_total",
}, []string{"reason"})
var BytesDownloaded = prometheus.NewCounter(prometheus.CounterOpts{
	Name: "sync_bytes_downloaded_total",
})
var BytesUploaded = prometheus.NewCounter(prometheus.CounterOpts{
	Name: "sync_bytes_uploaded_total",
})
var TransferAttempts = prometheus.NewCounterVec(prometheus.CounterOpts{
	Name: "sync_transfer_attempts_total",
}, []string{"outcome"})
var StallsDetected = prometheus.NewCounter(prometheus.CounterOpts{
	Name: "sync_stalls_detected_total",
})
var Remuxes = prometheus.NewCounterVec(prometheus.CounterOpts{
	Name: "sync_remuxes_total",
}, []string{"outcome"})
var UploadAttempts = prometheus.NewCounterVec(prometheus.CounterOpts{
	Name: "sync_upload_attempts_total",
}, []string{"outcome"})

func init() {
	prometheus.MustRegister(FilesCompleted)
	prometheus.MustRegister(FilesFailed)
	prometheus.MustRegister(FilesSkipped)
	prometheus.MustRegister(BytesDownloaded)
	prometheus.MustRegister(BytesUploaded)
	prometheus.MustRegister(TransferAttempts)
	prometheus.MustRegister(StallsDetected)
	prometheus.MustRegister(Remuxes)
	prometheus.MustRegister(UploadAttempts)
}
