package chi

import (
	"fmt"
	"net/http"

	"go.uber.org/zap"

	dombatch "github.com/kailas-cloud/specdex/internal/domain/batch"
	"github.com/kailas-cloud/specdex/internal/logger"
	documentuc "github.com/kailas-cloud/specdex/internal/usecase/document"
)

// GetApplyOnFields lists the scopes of enabled specifications on a doctype.
func (s *Server) GetApplyOnFields(w http.ResponseWriter, r *http.Request) {
	doctype, ok := pathParam(w, r, "doctype")
	if !ok {
		return
	}
	scopes, err := s.svc.Specifications.ApplyOnFields(r.Context(), doctype)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}
	items := make([]ApplyOn, len(scopes))
	for i, sc := range scopes {
		items[i] = ApplyOn{DT: sc.ScopeType, ApplyOn: sc.ApplyOn}
	}
	writeJSON(w, http.StatusOK, ApplyOnListResponse{Items: items})
}

// GetDataFieldnames lists the field names seen on documents of a doctype.
func (s *Server) GetDataFieldnames(w http.ResponseWriter, r *http.Request) {
	doctype, ok := pathParam(w, r, "doctype")
	if !ok {
		return
	}
	names, err := s.svc.Specifications.DataFieldnames(r.Context(), doctype)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, FieldnameListResponse{Items: names})
}

// GetFacetCatalog returns the filter components of a doctype.
func (s *Server) GetFacetCatalog(w http.ResponseWriter, r *http.Request) {
	doctype, ok := pathParam(w, r, "doctype")
	if !ok {
		return
	}
	components, err := s.svc.Facets.Catalog(r.Context(), doctype)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}
	items := make([]FacetComponent, len(components))
	for i, c := range components {
		items[i] = componentToAPI(c)
	}
	writeJSON(w, http.StatusOK, FacetCatalogResponse{Items: items})
}

// SelectDocuments returns the documents matching every active facet.
func (s *Server) SelectDocuments(w http.ResponseWriter, r *http.Request) {
	doctype, ok := pathParam(w, r, "doctype")
	if !ok {
		return
	}
	var req FacetSelectRequest
	if !decodeBody(w, r, &req) {
		return
	}
	sel, err := selectionFromAPI(req.Attributes)
	if err != nil {
		writeError(w, http.StatusBadRequest, ErrorCodeValidationFailed, err.Error())
		return
	}

	res, err := s.svc.Facets.SelectDocuments(r.Context(), doctype, sel)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}
	items := res.IDs
	if items == nil {
		items = []string{}
	}
	writeJSON(w, http.StatusOK, FacetSelectResponse{Restricted: res.Restricted, Items: items})
}

// QueryListing runs a filtered, sorted and paginated listing.
func (s *Server) QueryListing(w http.ResponseWriter, r *http.Request) {
	doctype, ok := pathParam(w, r, "doctype")
	if !ok {
		return
	}
	var req ListingRequest
	if !decodeBody(w, r, &req) {
		return
	}
	lreq, err := listingRequestFromAPI(req)
	if err != nil {
		writeError(w, http.StatusBadRequest, ErrorCodeValidationFailed, err.Error())
		return
	}

	resp, err := s.svc.Listing.Query(r.Context(), doctype, lreq)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}
	items := make([]Document, len(resp.Items))
	for i, d := range resp.Items {
		items[i] = documentToAPI(d)
	}
	writeJSON(w, http.StatusOK, ListingResponse{
		Items:      items,
		ItemsCount: resp.ItemsCount,
		Settings:   listingSettingsToAPI(resp.Settings),
	})
}

// ListDocuments returns one cursor page of documents.
func (s *Server) ListDocuments(w http.ResponseWriter, r *http.Request) {
	doctype, ok := pathParam(w, r, "doctype")
	if !ok {
		return
	}
	var cursor string
	var limit int
	if !queryParam(w, r, "cursor", &cursor) || !queryParam(w, r, "limit", &limit) {
		return
	}

	docs, nextCursor, err := s.svc.Documents.List(r.Context(), doctype, cursor, limit)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}
	items := make([]Document, len(docs))
	for i, d := range docs {
		items[i] = documentToAPI(d)
	}

	resp := DocumentListResponse{Items: items, HasMore: nextCursor != ""}
	if nextCursor != "" {
		resp.NextCursor = &nextCursor
	}
	if cursor == "" {
		if total, err := s.svc.Documents.Count(r.Context(), doctype); err == nil {
			resp.Total = &total
		}
	}
	writeJSON(w, http.StatusOK, resp)
}

// UpsertDocument stores a document and materializes its attribute values.
func (s *Server) UpsertDocument(w http.ResponseWriter, r *http.Request) {
	doctype, ok := pathParam(w, r, "doctype")
	if !ok {
		return
	}
	name, ok := pathParam(w, r, "name")
	if !ok {
		return
	}
	var req UpsertDocumentRequest
	if !decodeBody(w, r, &req) {
		return
	}
	overrides, err := overridesFromAPI(req.Attributes)
	if err != nil {
		writeError(w, http.StatusBadRequest, ErrorCodeValidationFailed, err.Error())
		return
	}

	doc, created, err := s.svc.Documents.Upsert(r.Context(), doctype, name, req.Fields, overrides)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	status := http.StatusOK
	if created {
		status = http.StatusCreated
		w.Header().Set("Location", fmt.Sprintf("/doctypes/%s/documents/%s", doctype, name))
	}
	writeJSON(w, status, documentToAPI(doc))
}

// PatchDocument merges fields into a document; a null field removes it.
func (s *Server) PatchDocument(w http.ResponseWriter, r *http.Request) {
	doctype, ok := pathParam(w, r, "doctype")
	if !ok {
		return
	}
	name, ok := pathParam(w, r, "name")
	if !ok {
		return
	}
	var req UpsertDocumentRequest
	if !decodeBody(w, r, &req) {
		return
	}
	overrides, err := overridesFromAPI(req.Attributes)
	if err != nil {
		writeError(w, http.StatusBadRequest, ErrorCodeValidationFailed, err.Error())
		return
	}

	doc, err := s.svc.Documents.Patch(r.Context(), doctype, name, req.Fields, overrides)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, documentToAPI(doc))
}

// BatchUpsertDocuments saves many documents, reporting an outcome per item.
func (s *Server) BatchUpsertDocuments(w http.ResponseWriter, r *http.Request) {
	doctype, ok := pathParam(w, r, "doctype")
	if !ok {
		return
	}
	var req BatchUpsertRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if len(req.Items) == 0 {
		writeError(w, http.StatusBadRequest, ErrorCodeValidationFailed, "items must not be empty")
		return
	}

	items := make([]documentuc.Item, len(req.Items))
	for i, it := range req.Items {
		overrides, err := overridesFromAPI(it.Attributes)
		if err != nil {
			writeError(w, http.StatusBadRequest, ErrorCodeValidationFailed, fmt.Sprintf("item %d: %v", i, err))
			return
		}
		items[i] = documentuc.Item{Name: it.Name, Fields: it.Fields, Overrides: overrides}
	}

	results := s.svc.Documents.UpsertBatch(r.Context(), doctype, items)
	resp := BatchResponse{Items: make([]BatchItemResult, len(results))}
	for i, res := range results {
		item := BatchItemResult{Name: res.Name(), Status: string(res.Status())}
		if res.Status() == dombatch.StatusError {
			item.Error = &ErrorResponse{Code: errorCode(res.Err()), Message: safeDomainMessage(res.Err())}
			resp.Failed++
		} else {
			resp.Succeeded++
		}
		resp.Items[i] = item
	}
	writeJSON(w, http.StatusOK, resp)
}

// GetDocument returns one document.
func (s *Server) GetDocument(w http.ResponseWriter, r *http.Request) {
	doctype, ok := pathParam(w, r, "doctype")
	if !ok {
		return
	}
	name, ok := pathParam(w, r, "name")
	if !ok {
		return
	}
	doc, err := s.svc.Documents.Get(r.Context(), doctype, name)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, documentToAPI(doc))
}

// DeleteDocument removes a document and its attribute values.
func (s *Server) DeleteDocument(w http.ResponseWriter, r *http.Request) {
	doctype, ok := pathParam(w, r, "doctype")
	if !ok {
		return
	}
	name, ok := pathParam(w, r, "name")
	if !ok {
		return
	}
	if err := s.svc.Documents.Delete(r.Context(), doctype, name); err != nil {
		s.handleDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// GetValues returns the attribute values of a document, optionally for one specification.
func (s *Server) GetValues(w http.ResponseWriter, r *http.Request) {
	doctype, ok := pathParam(w, r, "doctype")
	if !ok {
		return
	}
	name, ok := pathParam(w, r, "name")
	if !ok {
		return
	}
	var spec string
	if !queryParam(w, r, "specification", &spec) {
		return
	}

	views, err := s.svc.Values.GetValues(r.Context(), doctype, name, spec)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}
	items := make([]Value, len(views))
	for i, v := range views {
		items[i] = valueToAPI(v)
	}
	writeJSON(w, http.StatusOK, ValueListResponse{Items: items})
}

// UpdateValues rewrites or adds attribute value rows of a document.
func (s *Server) UpdateValues(w http.ResponseWriter, r *http.Request) {
	doctype, ok := pathParam(w, r, "doctype")
	if !ok {
		return
	}
	name, ok := pathParam(w, r, "name")
	if !ok {
		return
	}
	var req UpdateValuesRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if req.Specification == "" {
		writeError(w, http.StatusBadRequest, ErrorCodeValidationFailed, "specification is required")
		return
	}

	if err := s.svc.Values.UpdateValues(r.Context(), doctype, name, req.Specification, rowsFromAPI(req.Rows)); err != nil {
		s.handleDomainError(w, err)
		return
	}
	logger.FromContext(r.Context()).Debug("attribute values updated",
		zap.String("doctype", doctype),
		zap.String("name", name),
		zap.Int("rows", len(req.Rows)),
	)

	views, err := s.svc.Values.GetValues(r.Context(), doctype, name, "")
	if err != nil {
		s.handleDomainError(w, err)
		return
	}
	items := make([]Value, len(views))
	for i, v := range views {
		items[i] = valueToAPI(v)
	}
	writeJSON(w, http.StatusOK, ValueListResponse{Items: items})
}

// ListColors returns the colour palette.
func (s *Server) ListColors(w http.ResponseWriter, r *http.Request) {
	colors, err := s.svc.Colors.List(r.Context())
	if err != nil {
		s.handleDomainError(w, err)
		return
	}
	items := make([]Color, len(colors))
	for i, c := range colors {
		items[i] = colorToAPI(c)
	}
	writeJSON(w, http.StatusOK, ColorListResponse{Items: items})
}

// UpsertColor creates or replaces a palette entry.
func (s *Server) UpsertColor(w http.ResponseWriter, r *http.Request) {
	name, ok := pathParam(w, r, "color")
	if !ok {
		return
	}
	var req ColorRequest
	if !decodeBody(w, r, &req) {
		return
	}
	c, err := s.svc.Colors.Upsert(r.Context(), name, req.Hex, req.Image)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, colorToAPI(c))
}
