package ats

import (
	"context"
	"net/http"
	"net/url"
)

func (c *Client) CreateCandidate(ctx context.Context, in CandidatePayload) (string, error) {
	body, err := c.postJSON(ctx, "createCandidate", "/createCandidate", in)
	if err != nil {
		return "", err
	}
	return decodeID("createCandidate", body, "candidateid")
}

func (c *Client) UpdateCandidate(ctx context.Context, externalID string, in CandidatePayload) error {
	_, err := c.sendJSON(ctx, "updateCandidate", http.MethodPut, "/candidates/"+url.PathEscape(externalID), in)
	return err
}

func (c *Client) SearchCandidates(ctx context.Context, filter map[string]any) ([]CandidateRecord, error) {
	if filter == nil {
		filter = map[string]any{}
	}
	body, err := c.postJSON(ctx, "searchCandidateProfile", "/searchCandidateProfile", filter)
	if err != nil {
		return nil, err
	}
	return decodeList[CandidateRecord]("searchCandidateProfile", body)
}
