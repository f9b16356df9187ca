package e2e

import (
	"context"
	"fmt"

	influxdb2 "github.com/influxdata/influxdb-client-go/v2"
	"github.com/influxdata/influxdb-client-go/v2/api"
)

// InfluxClient wraps the influxdb client with the handful of operations the
// end to end suite needs: provisioning an org and bucket, and counting the
// coordinator event points that landed.
type InfluxClient struct {
	client influxdb2.Client
	query  api.QueryAPI
	org    string
	bucket string
}

func NewInfluxClient(url, org, bucket, token string) *InfluxClient {
	client := influxdb2.NewClient(url, token)
	return &InfluxClient{
		client: client,
		query:  client.QueryAPI(org),
		org:    org,
		bucket: bucket,
	}
}

// SetupBucket makes sure the org and bucket exist. The onboarded container
// already carries both, so this is a no-op there, but it keeps the suite
// usable against a long lived instance as well.
func (c *InfluxClient) SetupBucket(ctx context.Context) error {
	orgAPI := c.client.OrganizationsAPI()
	org, err := orgAPI.FindOrganizationByName(ctx, c.org)
	if err != nil {
		org, err = orgAPI.CreateOrganizationWithName(ctx, c.org)
		if err != nil {
			return fmt.Errorf("create organization %q: %w", c.org, err)
		}
	}

	bucketAPI := c.client.BucketsAPI()
	if _, err := bucketAPI.FindBucketByName(ctx, c.bucket); err != nil {
		if _, err := bucketAPI.CreateBucketWithName(ctx, org, c.bucket); err != nil {
			return fmt.Errorf("create bucket %q: %w", c.bucket, err)
		}
	}
	return nil
}

// CountRows returns the number of rows recorded for a measurement over the
// last five minutes. Measurements with several fields yield one row per
// field, so callers should assert with >= rather than exact equality.
func (c *InfluxClient) CountRows(ctx context.Context, measurement string) (int, error) {
	flux := fmt.Sprintf(
		`from(bucket:%q) |> range(start: -5m) |> filter(fn: (r) => r._measurement == %q)`,
		c.bucket, measurement,
	)
	res, err := c.query.Query(ctx, flux)
	if err != nil {
		return 0, err
	}
	defer res.Close()

	n := 0
	for res.Next() {
		n++
	}
	return n, res.Err()
}

func (c *InfluxClient) Close() {
	c.client.Close()
}
