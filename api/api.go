// Package api holds the wire types of the pool-server HTTP API,
// shared between the server and the poolctl client.
package api

type CreatePoolRequest struct {
	Name    string `json:"name,omitempty"`
	Workers int    `json:"workers,omitempty"`
	Echo    bool   `json:"echo,omitempty"`
}

type SubmitJobRequest struct {
	Command []string `json:"command,omitempty"`
	Mode    string   `json:"mode,omitempty"`
}

type SubmitJobResponse struct {
	ID string `json:"id,omitempty"`
}

type PoolStatus struct {
	Name     string `json:"name,omitempty"`
	Workers  int    `json:"workers,omitempty"`
	Echo     bool   `json:"echo,omitempty"`
	Queued   int    `json:"queued"`
	Recorded int    `json:"recorded"`
}

type ListPoolsResponse struct {
	Pools []*PoolStatus `json:"pools,omitempty"`
}

type Error struct {
	Error string `json:"error,omitempty"`
}
