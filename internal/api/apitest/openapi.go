package apitest

// DefaultOpenAPI declares every path the client depends on.
const DefaultOpenAPI = `{
  "openapi": "3.0.3",
  "info": {"title": "API de Autenticación de Usuarios", "version": "1.0.0"},
  "paths": {
    "/health": {"get": {"responses": {"200": {"description": "OK"}}}},
    "/register": {"post": {"responses": {"201": {"description": "Usuario registrado exitosamente"}}}},
    "/token": {"post": {"responses": {"200": {"description": "Token obtenido exitosamente"}}}},
    "/refresh": {"post": {"responses": {"200": {"description": "Token renovado"}}}},
    "/users/me": {"get": {"responses": {"200": {"description": "Información del usuario"}}}}
  }
}`

// PartialOpenAPI lacks /refresh and /users/me.
const PartialOpenAPI = `{
  "openapi": "3.0.3",
  "info": {"title": "partial", "version": "0.1.0"},
  "paths": {
    "/health": {"get": {"responses": {"200": {"description": "OK"}}}},
    "/register": {"post": {"responses": {"201": {"description": "created"}}}},
    "/token": {"post": {"responses": {"200": {"description": "ok"}}}}
  }
}`
