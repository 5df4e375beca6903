package container

import (
	"fjacquet/mpr-recon/internal/models"
	"fjacquet/mpr-recon/internal/pipeline"
)

func pipelineRequest(mpr, internal string) pipeline.Request {
	return pipeline.Request{Inputs: []pipeline.Input{
		{Role: models.RoleMPR, Name: "mpr.csv", Text: mpr},
		{Role: models.RoleInternal, Name: "internal.csv", Text: internal},
	}}
}
