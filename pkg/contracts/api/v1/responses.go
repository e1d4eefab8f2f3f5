package api

// Response is the success envelope of every JSON endpoint.
type Response struct {
	Status string      `json:"status"`
	Data   interface{} `json:"data"`
}

// Success wraps data in the standard envelope.
func Success(data interface{}) Response {
	return Response{Status: "success", Data: data}
}

// GroupsResponse lists the pump groups.
type GroupsResponse struct {
	Groups []string `json:"groups"`
}
