package domain

// Service is a gRPC service and its method names as reported by the backend
// or by server reflection.
type Service struct {
	Service string   `json:"service"`
	Methods []string `json:"methods"`
}

// FullMethods returns "<service>/<method>" names for every method.
func (s Service) FullMethods() []string {
	out := make([]string, 0, len(s.Methods))
	for _, m := range s.Methods {
		out = append(out, s.Service+"/"+m)
	}
	return out
}
