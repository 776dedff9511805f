// Package repository define las interfaces de repositorio de dominio que consume
// el pipeline de introspección.
//
// Cada interfaz expone una sola capacidad de lectura. El servicio nunca escribe
// estado de revocación: solo lo consulta.
//
// Las implementaciones concretas viven en internal/store/ (memory, pg, mongo) y
// pueden envolverse con internal/store/cached.
//
//	┌──────────────────────────────────────────────┐
//	│     services/oauth (Verifier, Normalizer)    │
//	└──────────────────────────────────────────────┘
//	                     │
//	                     ▼
//	┌──────────────────────────────────────────────┐
//	│  domain/repository (interfaces)              │
//	│  AccessTokenRepository, ClientRepository,    │
//	│  UserRepository                              │
//	└──────────────────────────────────────────────┘
//	                     │
//	      ┌──────────────┼──────────────┐
//	      ▼              ▼              ▼
//	┌──────────┐   ┌──────────┐   ┌──────────┐
//	│  memory  │   │    pg    │   │  mongo   │
//	└──────────┘   └──────────┘   └──────────┘
//
// Convenciones:
//   - Context siempre es el primer parámetro
//   - Un registro inexistente de token o client se reporta como revocado
//   - Errores de dominio están en errors.go
package repository
