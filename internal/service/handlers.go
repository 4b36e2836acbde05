package service

import (
	"context"
	"net/http"

	"connectrpc.com/connect"
)

// Fully-qualified service names. Procedures are "/<service>/<method>".
const (
	InvoiceServiceName    = "clubportal.v1.InvoiceService"
	TemplateServiceName   = "clubportal.v1.TemplateService"
	MembershipServiceName = "clubportal.v1.MembershipService"
	CampaignServiceName   = "clubportal.v1.CampaignService"
)

const (
	InvoiceServiceListFamilyGroupsProcedure   = "/" + InvoiceServiceName + "/ListFamilyGroups"
	InvoiceServiceRenderInvoiceProcedure      = "/" + InvoiceServiceName + "/RenderInvoice"
	InvoiceServiceRecordPaymentProcedure      = "/" + InvoiceServiceName + "/RecordPayment"
	InvoiceServiceApprovePaymentProcedure     = "/" + InvoiceServiceName + "/ApprovePayment"
	InvoiceServiceRevertLineItemProcedure     = "/" + InvoiceServiceName + "/RevertLineItem"
	InvoiceServiceExportFamilyGroupsProcedure = "/" + InvoiceServiceName + "/ExportFamilyGroups"

	TemplateServiceSaveTemplateProcedure   = "/" + TemplateServiceName + "/SaveTemplate"
	TemplateServiceGetTemplateProcedure    = "/" + TemplateServiceName + "/GetTemplate"
	TemplateServiceRequiredTokensProcedure = "/" + TemplateServiceName + "/RequiredTokens"
	TemplateServiceRenderBulletinProcedure = "/" + TemplateServiceName + "/RenderBulletin"

	MembershipServiceGetMembershipProcedure         = "/" + MembershipServiceName + "/GetMembership"
	MembershipServiceAddFamilyMemberProcedure       = "/" + MembershipServiceName + "/AddFamilyMember"
	MembershipServiceUpdateFamilyMemberProcedure    = "/" + MembershipServiceName + "/UpdateFamilyMember"
	MembershipServiceRemoveFamilyMemberProcedure    = "/" + MembershipServiceName + "/RemoveFamilyMember"
	MembershipServiceChangePlanProcedure            = "/" + MembershipServiceName + "/ChangePlan"
	MembershipServiceRenderMembershipSheetProcedure = "/" + MembershipServiceName + "/RenderMembershipSheet"

	CampaignServiceSendCampaignProcedure = "/" + CampaignServiceName + "/SendCampaign"
)

// routes maps each procedure of one service to its handler.
type routes map[string]*connect.Handler

func (r routes) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	if h, ok := r[req.URL.Path]; ok {
		h.ServeHTTP(w, req)
		return
	}
	http.NotFound(w, req)
}

func unary[Req, Res any](procedure string, fn func(context.Context, *connect.Request[Req]) (*connect.Response[Res], error), opts []connect.HandlerOption) *connect.Handler {
	opts = append([]connect.HandlerOption{connect.WithCodec(jsonCodec{})}, opts...)
	return connect.NewUnaryHandler(procedure, fn, opts...)
}

// NewInvoiceServiceHandler builds an HTTP handler from the service
// implementation. It returns the path on which to mount the handler and the
// handler itself.
func NewInvoiceServiceHandler(svc *InvoiceService, opts ...connect.HandlerOption) (string, http.Handler) {
	return "/" + InvoiceServiceName + "/", routes{
		InvoiceServiceListFamilyGroupsProcedure:   unary(InvoiceServiceListFamilyGroupsProcedure, svc.ListFamilyGroups, opts),
		InvoiceServiceRenderInvoiceProcedure:      unary(InvoiceServiceRenderInvoiceProcedure, svc.RenderInvoice, opts),
		InvoiceServiceRecordPaymentProcedure:      unary(InvoiceServiceRecordPaymentProcedure, svc.RecordPayment, opts),
		InvoiceServiceApprovePaymentProcedure:     unary(InvoiceServiceApprovePaymentProcedure, svc.ApprovePayment, opts),
		InvoiceServiceRevertLineItemProcedure:     unary(InvoiceServiceRevertLineItemProcedure, svc.RevertLineItem, opts),
		InvoiceServiceExportFamilyGroupsProcedure: unary(InvoiceServiceExportFamilyGroupsProcedure, svc.ExportFamilyGroups, opts),
	}
}

// NewTemplateServiceHandler builds an HTTP handler for the template service.
func NewTemplateServiceHandler(svc *TemplateService, opts ...connect.HandlerOption) (string, http.Handler) {
	return "/" + TemplateServiceName + "/", routes{
		TemplateServiceSaveTemplateProcedure:   unary(TemplateServiceSaveTemplateProcedure, svc.SaveTemplate, opts),
		TemplateServiceGetTemplateProcedure:    unary(TemplateServiceGetTemplateProcedure, svc.GetTemplate, opts),
		TemplateServiceRequiredTokensProcedure: unary(TemplateServiceRequiredTokensProcedure, svc.RequiredTokens, opts),
		TemplateServiceRenderBulletinProcedure: unary(TemplateServiceRenderBulletinProcedure, svc.RenderBulletin, opts),
	}
}

// NewMembershipServiceHandler builds an HTTP handler for the membership service.
func NewMembershipServiceHandler(svc *MembershipService, opts ...connect.HandlerOption) (string, http.Handler) {
	return "/" + MembershipServiceName + "/", routes{
		MembershipServiceGetMembershipProcedure:         unary(MembershipServiceGetMembershipProcedure, svc.GetMembership, opts),
		MembershipServiceAddFamilyMemberProcedure:       unary(MembershipServiceAddFamilyMemberProcedure, svc.AddFamilyMember, opts),
		MembershipServiceUpdateFamilyMemberProcedure:    unary(MembershipServiceUpdateFamilyMemberProcedure, svc.UpdateFamilyMember, opts),
		MembershipServiceRemoveFamilyMemberProcedure:    unary(MembershipServiceRemoveFamilyMemberProcedure, svc.RemoveFamilyMember, opts),
		MembershipServiceChangePlanProcedure:            unary(MembershipServiceChangePlanProcedure, svc.ChangePlan, opts),
		MembershipServiceRenderMembershipSheetProcedure: unary(MembershipServiceRenderMembershipSheetProcedure, svc.RenderMembershipSheet, opts),
	}
}

// NewCampaignServiceHandler builds an HTTP handler for the campaign service.
func NewCampaignServiceHandler(svc *CampaignService, opts ...connect.HandlerOption) (string, http.Handler) {
	return "/" + CampaignServiceName + "/", routes{
		CampaignServiceSendCampaignProcedure: unary(CampaignServiceSendCampaignProcedure, svc.SendCampaign, opts),
	}
}
