package notify

import (
	"fmt"
	"time"
)

// Mail is a rendered message.
type Mail struct {
	Subject string
	HTML    string
	Text    string
}

// RenderOrderCreated builds the order confirmation (es locale, like the
// storefront).
func RenderOrderCreated(orderID string, subtotal float64, currency string, expiresAt time.Time, pickupBranchName *string) Mail {
	branch := "por definir"
	if pickupBranchName != nil {
		branch = *pickupBranchName
	}
	deadline := expiresAt.Format("02/01/2006")

	subject := fmt.Sprintf("Tu pedido %s fue creado", shortID(orderID))
	text := fmt.Sprintf(
		"Recibimos tu pedido %s.\nTotal: %.2f %s\nSucursal de entrega: %s\nPaga en tienda antes del %s o el pedido expira.",
		orderID, subtotal, currency, branch, deadline,
	)
	html := fmt.Sprintf(
		"<h2>Recibimos tu pedido</h2><p>Pedido <strong>%s</strong></p><p>Total: <strong>%.2f %s</strong></p><p>Sucursal de entrega: %s</p><p>Paga en tienda antes del <strong>%s</strong> o el pedido expira.</p>",
		orderID, subtotal, currency, branch, deadline,
	)
	return Mail{Subject: subject, HTML: html, Text: text}
}

// RenderOrderStatusUpdated builds the transition notice.
func RenderOrderStatusUpdated(orderID string, fromStatus *string, toStatus string, reason *string) Mail {
	subject := fmt.Sprintf("Tu pedido %s cambió de estado: %s", shortID(orderID), statusLabel(toStatus))

	detail := ""
	if reason != nil && *reason != "" {
		detail = fmt.Sprintf("\nMotivo: %s", *reason)
	}
	text := fmt.Sprintf("Tu pedido %s ahora está %s.%s", orderID, statusLabel(toStatus), detail)

	htmlDetail := ""
	if reason != nil && *reason != "" {
		htmlDetail = fmt.Sprintf("<p>Motivo: %s</p>", *reason)
	}
	html := fmt.Sprintf(
		"<h2>Actualización de tu pedido</h2><p>Pedido <strong>%s</strong></p><p>Nuevo estado: <strong>%s</strong></p>%s",
		orderID, statusLabel(toStatus), htmlDetail,
	)
	return Mail{Subject: subject, HTML: html, Text: text}
}

func statusLabel(status string) string {
	switch status {
	case "PENDING_PAYMENT":
		return "pendiente de pago"
	case "PAID":
		return "pagado"
	case "READY_FOR_PICKUP":
		return "listo para recoger"
	case "SHIPPED":
		return "enviado"
	case "CANCELLED_EXPIRED":
		return "cancelado por expiración"
	case "CANCELLED_MANUAL":
		return "cancelado"
	default:
		return status
	}
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
