package audit

import "strings"

// ActionResource holds action and resource derived from a gRPC full method name.
type ActionResource struct {
	Action   string
	Resource string
}

// ParseFullMethod maps /promanage.session.v1.SessionService/Login to
// {login, session}. Get/List/Create/Update/Delete prefixes collapse to the verb;
// other methods become their lowercase name.
func ParseFullMethod(fullMethod string) ActionResource {
	slash := strings.LastIndex(fullMethod, "/")
	if slash < 0 {
		return ActionResource{Action: "unknown", Resource: "unknown"}
	}
	method := fullMethod[slash+1:]
	service := fullMethod[:slash]
	dot := strings.LastIndex(service, ".")
	if dot < 0 {
		return ActionResource{Action: methodToAction(method), Resource: "unknown"}
	}
	return ActionResource{Action: methodToAction(method), Resource: serviceToResource(service[dot+1:])}
}

func serviceToResource(name string) string {
	s := strings.TrimSuffix(name, "Service")
	if s == "" {
		return "unknown"
	}
	return strings.ToLower(s[:1]) + s[1:]
}

func methodToAction(method string) string {
	for _, verb := range []string{"Get", "List", "Create", "Update", "Delete"} {
		if strings.HasPrefix(method, verb) && method != verb {
			return strings.ToLower(verb)
		}
	}
	if method == "" {
		return "unknown"
	}
	return strings.ToLower(method)
}
