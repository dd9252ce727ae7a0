package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/smartwardrobe/wardrobe-server/internal/store"
)

func (s *Server) registerRecordRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "queryRecords",
		Method:      http.MethodPost,
		Path:        "/api/v1/records/{table}/query",
		Summary:     "Query records",
		Description: "Returns every row of a table whose columns equal the filter values, oldest first",
		Tags:        []string{"Records"},
	}, s.handleQueryRecords)

	huma.Register(s.api, huma.Operation{
		OperationID:   "insertRecord",
		Method:        http.MethodPost,
		Path:          "/api/v1/records/{table}",
		Summary:       "Insert record",
		Description:   "Inserts a row and returns it with the assigned id and timestamps",
		Tags:          []string{"Records"},
		DefaultStatus: http.StatusCreated,
	}, s.handleInsertRecord)

	huma.Register(s.api, huma.Operation{
		OperationID: "updateRecord",
		Method:      http.MethodPatch,
		Path:        "/api/v1/records/{table}/{id}",
		Summary:     "Update record",
		Description: "Applies a partial update and returns the stored row",
		Tags:        []string{"Records"},
	}, s.handleUpdateRecord)

	huma.Register(s.api, huma.Operation{
		OperationID:   "deleteRecord",
		Method:        http.MethodDelete,
		Path:          "/api/v1/records/{table}/{id}",
		Summary:       "Delete record",
		Description:   "Deletes a row by id",
		Tags:          []string{"Records"},
		DefaultStatus: http.StatusNoContent,
	}, s.handleDeleteRecord)
}

// === DTOs ===

// QueryRecordsRequest is the optional query body.
type QueryRecordsRequest struct {
	Filter store.Filter `json:"filter,omitempty" doc:"Column equality filter; empty selects every row"`
}

// QueryRecordsInput contains parameters for querying a table.
type QueryRecordsInput struct {
	Table string               `path:"table" doc:"Table name" example:"items"`
	Body  *QueryRecordsRequest `required:"false"`
}

// RowsResponse carries a list of rows.
type RowsResponse struct {
	Rows []store.Row `json:"rows" doc:"Matching rows"`
}

// RowsOutput wraps RowsResponse for Huma.
type RowsOutput struct {
	Body RowsResponse
}

// InsertRecordRequest carries the row to insert.
type InsertRecordRequest struct {
	Row store.Row `json:"row" doc:"Column values; id and timestamps are assigned by the server"`
}

// InsertRecordInput contains parameters for inserting a row.
type InsertRecordInput struct {
	Table string `path:"table" doc:"Table name" example:"sections"`
	Body  InsertRecordRequest
}

// UpdateRecordRequest carries a partial update.
type UpdateRecordRequest struct {
	Patch store.Row `json:"patch" doc:"Columns to change"`
}

// UpdateRecordInput contains parameters for updating a row.
type UpdateRecordInput struct {
	Table string `path:"table" doc:"Table name" example:"items"`
	ID    string `path:"id" doc:"Record ID"`
	Body  UpdateRecordRequest
}

// RowResponse carries a single stored row.
type RowResponse struct {
	Row store.Row `json:"row" doc:"Stored row"`
}

// RowOutput wraps RowResponse for Huma.
type RowOutput struct {
	Body RowResponse
}

// DeleteRecordInput contains parameters for deleting a row.
type DeleteRecordInput struct {
	Table string `path:"table" doc:"Table name" example:"sections"`
	ID    string `path:"id" doc:"Record ID"`
}

// === Handlers ===

func (s *Server) handleQueryRecords(ctx context.Context, input *QueryRecordsInput) (*RowsOutput, error) {
	var filter store.Filter
	if input.Body != nil {
		filter = input.Body.Filter
	}

	rows, err := s.records.Select(ctx, input.Table, filter)
	if err != nil {
		return nil, s.storeError(err)
	}
	if rows == nil {
		rows = []store.Row{}
	}
	return &RowsOutput{Body: RowsResponse{Rows: rows}}, nil
}

func (s *Server) handleInsertRecord(ctx context.Context, input *InsertRecordInput) (*RowOutput, error) {
	row, err := s.records.Insert(ctx, input.Table, input.Body.Row)
	if err != nil {
		return nil, s.storeError(err)
	}
	s.logger.Debug("Record inserted", "table", input.Table, "id", row[store.ColID])
	return &RowOutput{Body: RowResponse{Row: row}}, nil
}

func (s *Server) handleUpdateRecord(ctx context.Context, input *UpdateRecordInput) (*RowOutput, error) {
	row, err := s.records.Update(ctx, input.Table, input.ID, input.Body.Patch)
	if err != nil {
		return nil, s.storeError(err)
	}
	return &RowOutput{Body: RowResponse{Row: row}}, nil
}

func (s *Server) handleDeleteRecord(ctx context.Context, input *DeleteRecordInput) (*struct{}, error) {
	if err := s.records.Delete(ctx, input.Table, input.ID); err != nil {
		return nil, s.storeError(err)
	}
	s.logger.Debug("Record deleted", "table", input.Table, "id", input.ID)
	return nil, nil
}
