// Package logger provee el logger Zap singleton del servicio de introspección,
// con scoping por request vía context.
//
// Inicialización (una vez en cmd):
//
//	logger.Init(logger.Config{Env: cfg.App.Env, Level: cfg.Log.Level, ServiceName: "introspectd"})
//	defer logger.Sync()
//
// En handlers/services:
//
//	log := logger.From(ctx).With(logger.Layer("service"), logger.Component("oauth.introspect"))
//	log.Debug("token inactive", logger.Reason("token_revoked"))
//
// Las razones de inactividad sólo se loguean a nivel debug; nunca salen en la respuesta.
package logger
