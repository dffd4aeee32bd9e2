package ats

import "context"

func (c *Client) CreateJob(ctx context.Context, in JobPayload) (string, error) {
	body, err := c.postJSON(ctx, "createJob", "/createJob", in)
	if err != nil {
		return "", err
	}
	return decodeID("createJob", body, "jobid")
}

// UpdateJob sends the payload with its jobid set to externalID.
func (c *Client) UpdateJob(ctx context.Context, externalID string, in JobPayload) error {
	in.JobID = &externalID
	_, err := c.postJSON(ctx, "updateJob", "/updateJob", in)
	return err
}

func (c *Client) SearchJobs(ctx context.Context, filter map[string]any) ([]JobRecord, error) {
	if filter == nil {
		filter = map[string]any{}
	}
	body, err := c.postJSON(ctx, "SearchJob", "/SearchJob", filter)
	if err != nil {
		return nil, err
	}
	return decodeList[JobRecord]("SearchJob", body)
}
