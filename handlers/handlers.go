package handlers

import (
	"github.com/forbearing/flowquery/dataset"
	"github.com/forbearing/flowquery/middleware"
	"github.com/forbearing/flowquery/parameters"
	"github.com/forbearing/flowquery/response"
	"github.com/gin-gonic/gin"
)

// Handlers holds the collaborators every route handler closes over.
type Handlers struct {
	Orchestrator *dataset.Orchestrator
	Configs      *parameters.ConfigSet
}

// DataCatalog implements "…/data-catalog".
func (h *Handlers) DataCatalog(c *gin.Context) {
	user := middleware.UserFrom(c)
	items, err := h.Orchestrator.Catalog(c.Request.Context(), user)
	if err != nil {
		response.ResponseError(c, err)
		return
	}
	response.ResponseJSON(c, response.CodeSuccess, gin.H{"datasets": items})
}

// ProjectParameters implements "…/parameters": resolve every project
// parameter (no dataset projection).
func (h *Handlers) ProjectParameters(c *gin.Context) {
	in, err := parseInputs(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}
	user := middleware.UserFrom(c)

	var ps *parameters.ParameterSet
	if in.hasParent {
		ps, err = h.Configs.ResolveUpdates(in.parentParam, in.selections, user)
	} else {
		ps, err = h.Configs.Resolve(nil, in.selections, user)
	}
	if err != nil {
		response.ResponseError(c, err)
		return
	}
	response.ResponseJSON(c, response.CodeSuccess, parametersModel(ps))
}

// DatasetParameters implements "…/dataset/{name}/parameters".
func (h *Handlers) DatasetParameters(c *gin.Context) {
	h.entryParameters(c, c.Param("name"))
}

// DashboardParameters implements "…/dashboard/{name}/parameters".
func (h *Handlers) DashboardParameters(c *gin.Context) {
	h.entryParameters(c, c.Param("name"))
}

func (h *Handlers) entryParameters(c *gin.Context, name string) {
	in, err := parseInputs(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}
	user := middleware.UserFrom(c)

	var ps *parameters.ParameterSet
	if in.hasParent {
		ps, err = h.Orchestrator.ResolveParameterUpdates(c.Request.Context(), in.parentParam, user, in.selections)
	} else {
		ps, err = h.Orchestrator.ResolveParameters(c.Request.Context(), name, user, in.selections)
	}
	if err != nil {
		response.ResponseError(c, err)
		return
	}
	response.ResponseJSON(c, response.CodeSuccess, parametersModel(ps))
}

// Dataset implements "…/dataset/{name}": resolve + execute and return
// results, per spec section 4.6.
func (h *Handlers) Dataset(c *gin.Context) {
	name := c.Param("name")
	in, err := parseInputs(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}
	user := middleware.UserFrom(c)
	configurables := middleware.ConfigurablesFrom(c)

	if in.verifyParams {
		ps, err := h.Orchestrator.ResolveParameters(c.Request.Context(), name, user, in.selections)
		if err != nil {
			response.ResponseError(c, err)
			return
		}
		response.ResponseJSON(c, response.CodeSuccess, parametersModel(ps))
		return
	}

	result, err := h.Orchestrator.GetDataset(c.Request.Context(), name, user, in.selections, configurables, in.opts)
	if err != nil {
		response.ResponseError(c, err)
		return
	}
	rendered, err := result.Render(in.opts.Offset, in.opts.Limit, in.opts.Orientation, in.opts.Select)
	if err != nil {
		response.ResponseError(c, err)
		return
	}
	response.ResponseJSON(c, response.CodeSuccess, rendered)
}

// Dashboard implements "…/dashboard/{name}": return rendered dashboard
// bytes via the DashboardRenderer collaborator.
func (h *Handlers) Dashboard(c *gin.Context) {
	name := c.Param("name")
	in, err := parseInputs(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}
	user := middleware.UserFrom(c)
	configurables := middleware.ConfigurablesFrom(c)

	rendered, err := h.Orchestrator.RenderDashboard(c.Request.Context(), name, user, in.selections, configurables)
	if err != nil {
		response.ResponseError(c, err)
		return
	}
	c.Data(200, rendered.ContentType, rendered.Bytes)
}

func parametersModel(ps *parameters.ParameterSet) gin.H {
	wire := make([]map[string]any, 0)
	for _, p := range ps.Ordered() {
		wire = append(wire, p.ToWire())
	}
	return gin.H{"parameters": wire}
}
