// file: metrics/cloudwatch.go
package metrics

import (
	"context"
	"time"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/cloudwatch"
	"school-activities/logger"
)

const (
	// DefaultNamespace is used when no namespace is configured.
	DefaultNamespace = "SchoolActivities"

	// maxBatch is the number of datums sent per PutMetricData call.
	maxBatch = 20

	queueSize     = 256
	flushInterval = 10 * time.Second
)

// MetricPutter is the part of the CloudWatch API the recorder uses.
type MetricPutter interface {
	PutMetricData(input *cloudwatch.PutMetricDataInput) (*cloudwatch.PutMetricDataOutput, error)
}

// CloudWatchRecorder queues datums and publishes them in batches from Run, so request
// handlers never wait on CloudWatch.
type CloudWatchRecorder struct {
	client    MetricPutter
	namespace string
	interval  time.Duration
	queue     chan *cloudwatch.MetricDatum
}

// NewCloudWatchRecorder creates a recorder for the given client.
func NewCloudWatchRecorder(client MetricPutter, namespace string) *CloudWatchRecorder {
	if namespace == "" {
		namespace = DefaultNamespace
	}
	return &CloudWatchRecorder{
		client:    client,
		namespace: namespace,
		interval:  flushInterval,
		queue:     make(chan *cloudwatch.MetricDatum, queueSize),
	}
}

// NewCloudWatchClient builds a CloudWatch client for region from the default credential chain.
func NewCloudWatchClient(region string) (*cloudwatch.CloudWatch, error) {
	sess, err := session.NewSession(&aws.Config{Region: aws.String(region)})
	if err != nil {
		return nil, err
	}
	return cloudwatch.New(sess), nil
}

func (r *CloudWatchRecorder) CatalogFetch(ok bool, d time.Duration) {
	result := "ok"
	if !ok {
		result = "error"
	}
	r.enqueue("CatalogFetches", 1, cloudwatch.StandardUnitCount, "Result", result)
	r.enqueue("CatalogFetchLatencyMs", float64(d.Milliseconds()), cloudwatch.StandardUnitMilliseconds, "", "")
}

func (r *CloudWatchRecorder) Signup(outcome string) {
	r.enqueue("Signups", 1, cloudwatch.StandardUnitCount, "Outcome", outcome)
}

func (r *CloudWatchRecorder) Unregister(outcome string) {
	r.enqueue("Unregisters", 1, cloudwatch.StandardUnitCount, "Outcome", outcome)
}

func (r *CloudWatchRecorder) LiveClients(n int) {
	r.enqueue("LiveClients", float64(n), cloudwatch.StandardUnitCount, "", "")
}

func (r *CloudWatchRecorder) enqueue(name string, value float64, unit, dimension, dimensionValue string) {
	datum := &cloudwatch.MetricDatum{
		MetricName: aws.String(name),
		Timestamp:  aws.Time(time.Now()),
		Value:      aws.Float64(value),
		Unit:       aws.String(unit),
	}
	if dimension != "" {
		datum.Dimensions = []*cloudwatch.Dimension{
			{
				Name:  aws.String(dimension),
				Value: aws.String(dimensionValue),
			},
		}
	}

	select {
	case r.queue <- datum:
	default:
		logger.Warn.Printf("CloudWatchRecorder: Queue full, dropping %s", name)
	}
}

// Run publishes queued datums until ctx is cancelled, then flushes what is left.
func (r *CloudWatchRecorder) Run(ctx context.Context) {
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	var batch []*cloudwatch.MetricDatum
	for {
		select {
		case datum := <-r.queue:
			batch = append(batch, datum)
			if len(batch) >= maxBatch {
				r.put(batch)
				batch = nil
			}
		case <-ticker.C:
			r.put(batch)
			batch = nil
		case <-ctx.Done():
			for {
				select {
				case datum := <-r.queue:
					batch = append(batch, datum)
				default:
					for len(batch) > maxBatch {
						r.put(batch[:maxBatch])
						batch = batch[maxBatch:]
					}
					r.put(batch)
					return
				}
			}
		}
	}
}

func (r *CloudWatchRecorder) put(batch []*cloudwatch.MetricDatum) {
	if len(batch) == 0 {
		return
	}
	_, err := r.client.PutMetricData(&cloudwatch.PutMetricDataInput{
		Namespace:  aws.String(r.namespace),
		MetricData: batch,
	})
	if err != nil {
		logger.Error.Printf("CloudWatchRecorder: PutMetricData failed (%d datums): %v", len(batch), err)
		return
	}
	logger.Debug.Printf("CloudWatchRecorder: Published %d datums to %s", len(batch), r.namespace)
}
