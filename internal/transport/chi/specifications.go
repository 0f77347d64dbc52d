package chi

import "net/http"

// CreateSpecification stores a new specification.
func (s *Server) CreateSpecification(w http.ResponseWriter, r *http.Request) {
	var req SpecificationRequest
	if !decodeBody(w, r, &req) {
		return
	}
	params, err := specParamsFromAPI(req)
	if err != nil {
		writeError(w, http.StatusBadRequest, ErrorCodeValidationFailed, err.Error())
		return
	}

	spec, err := s.svc.Specifications.Create(r.Context(), params)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	w.Header().Set("Location", "/specifications/"+spec.Name())
	w.Header().Set("ETag", etag(spec.Revision()))
	writeJSON(w, http.StatusCreated, specToAPI(spec))
}

// ListSpecifications returns every specification.
func (s *Server) ListSpecifications(w http.ResponseWriter, r *http.Request) {
	specs, err := s.svc.Specifications.List(r.Context())
	if err != nil {
		s.handleDomainError(w, err)
		return
	}
	items := make([]Specification, len(specs))
	for i, sp := range specs {
		items[i] = specToAPI(sp)
	}
	writeJSON(w, http.StatusOK, SpecificationListResponse{Items: items})
}

// GetSpecification returns one specification with its revision as ETag.
func (s *Server) GetSpecification(w http.ResponseWriter, r *http.Request) {
	name, ok := pathParam(w, r, "spec")
	if !ok {
		return
	}
	spec, err := s.svc.Specifications.Get(r.Context(), name)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}
	w.Header().Set("ETag", etag(spec.Revision()))
	writeJSON(w, http.StatusOK, specToAPI(spec))
}

// UpdateSpecification replaces a definition, honouring If-Match.
func (s *Server) UpdateSpecification(w http.ResponseWriter, r *http.Request) {
	name, ok := pathParam(w, r, "spec")
	if !ok {
		return
	}
	expected, err := ifMatch(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, ErrorCodeBadRequest, err.Error())
		return
	}
	var req SpecificationRequest
	if !decodeBody(w, r, &req) {
		return
	}
	params, err := specParamsFromAPI(req)
	if err != nil {
		writeError(w, http.StatusBadRequest, ErrorCodeValidationFailed, err.Error())
		return
	}

	spec, err := s.svc.Specifications.Update(r.Context(), name, params, expected)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}
	w.Header().Set("ETag", etag(spec.Revision()))
	writeJSON(w, http.StatusOK, specToAPI(spec))
}

// DeleteSpecification removes a specification; its values are purged in the background.
func (s *Server) DeleteSpecification(w http.ResponseWriter, r *http.Request) {
	name, ok := pathParam(w, r, "spec")
	if !ok {
		return
	}
	if err := s.svc.Specifications.Delete(r.Context(), name); err != nil {
		s.handleDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// DefineAttribute appends an attribute to a specification.
func (s *Server) DefineAttribute(w http.ResponseWriter, r *http.Request) {
	name, ok := pathParam(w, r, "spec")
	if !ok {
		return
	}
	var req Attribute
	if !decodeBody(w, r, &req) {
		return
	}
	attr, err := attributeFromAPI(req)
	if err != nil {
		writeError(w, http.StatusBadRequest, ErrorCodeValidationFailed, err.Error())
		return
	}

	spec, err := s.svc.Specifications.DefineAttribute(r.Context(), name, attr)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}
	w.Header().Set("ETag", etag(spec.Revision()))
	writeJSON(w, http.StatusCreated, specToAPI(spec))
}

// RenameAttribute renames an attribute; stored values follow asynchronously.
func (s *Server) RenameAttribute(w http.ResponseWriter, r *http.Request) {
	name, ok := pathParam(w, r, "spec")
	if !ok {
		return
	}
	from, ok := pathParam(w, r, "attribute")
	if !ok {
		return
	}
	var req RenameAttributeRequest
	if !decodeBody(w, r, &req) {
		return
	}

	spec, err := s.svc.Specifications.RenameAttribute(r.Context(), name, from, req.NewName)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}
	w.Header().Set("ETag", etag(spec.Revision()))
	writeJSON(w, http.StatusOK, specToAPI(spec))
}

// CreateValues dispatches bulk value creation jobs.
func (s *Server) CreateValues(w http.ResponseWriter, r *http.Request) {
	name, ok := pathParam(w, r, "spec")
	if !ok {
		return
	}
	var req CreateValuesRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if len(req.Rows) == 0 {
		writeError(w, http.StatusBadRequest, ErrorCodeValidationFailed, "rows must not be empty")
		return
	}

	queued, err := s.svc.Values.CreateValues(r.Context(), name, rowsFromAPI(req.Rows))
	if err != nil {
		s.handleDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusAccepted, CreateValuesResponse{Queued: queued})
}
