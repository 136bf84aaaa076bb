package ux

// Messages shown after successful operations.
const (
	MsgRegistered   = "✓ Registro exitoso. Puedes iniciar sesión ahora."
	MsgLoggedIn     = "✓ Sesión iniciada correctamente"
	MsgLoggedOut    = "Sesión cerrada correctamente"
	MsgRefreshed    = "✓ Token renovado exitosamente"
	MsgLogoutKept   = "Sesión mantenida"
	MsgChecking     = "Verificando..."
	MsgUserNotFound = "No se pudo obtener la información del usuario"
)

// Health indicator labels.
const (
	HealthOnline  = "🟢 En línea"
	HealthOffline = "🔴 Offline"
)

// HealthIndicator returns the label for an API reachability result.
func HealthIndicator(online bool) string {
	if online {
		return HealthOnline
	}
	return HealthOffline
}
