package service

import (
	"context"

	"connectrpc.com/connect"
)

// Client calls the portal's services over Connect with the JSON codec.
type Client struct {
	listFamilyGroups      *connect.Client[ListFamilyGroupsRequest, ListFamilyGroupsResponse]
	renderInvoice         *connect.Client[RenderInvoiceRequest, RenderInvoiceResponse]
	recordPayment         *connect.Client[RecordPaymentRequest, RecordPaymentResponse]
	approvePayment        *connect.Client[ApprovePaymentRequest, ApprovePaymentResponse]
	revertLineItem        *connect.Client[RevertLineItemRequest, RevertLineItemResponse]
	exportFamilyGroups    *connect.Client[ExportFamilyGroupsRequest, ExportFamilyGroupsResponse]
	saveTemplate          *connect.Client[SaveTemplateRequest, SaveTemplateResponse]
	getTemplate           *connect.Client[GetTemplateRequest, GetTemplateResponse]
	requiredTokens        *connect.Client[RequiredTokensRequest, RequiredTokensResponse]
	renderBulletin        *connect.Client[RenderBulletinRequest, RenderBulletinResponse]
	getMembership         *connect.Client[GetMembershipRequest, MembershipResponse]
	addFamilyMember       *connect.Client[AddFamilyMemberRequest, MembershipResponse]
	updateFamilyMember    *connect.Client[UpdateFamilyMemberRequest, MembershipResponse]
	removeFamilyMember    *connect.Client[RemoveFamilyMemberRequest, MembershipResponse]
	changePlan            *connect.Client[ChangePlanRequest, MembershipResponse]
	renderMembershipSheet *connect.Client[RenderMembershipSheetRequest, RenderMembershipSheetResponse]
	sendCampaign          *connect.Client[SendCampaignRequest, SendCampaignResponse]
}

// NewClient returns a client for the server at baseURL, for example
// http://localhost:8080.
func NewClient(httpClient connect.HTTPClient, baseURL string, opts ...connect.ClientOption) *Client {
	opts = append([]connect.ClientOption{connect.WithCodec(jsonCodec{})}, opts...)
	return &Client{
		listFamilyGroups:      connect.NewClient[ListFamilyGroupsRequest, ListFamilyGroupsResponse](httpClient, baseURL+InvoiceServiceListFamilyGroupsProcedure, opts...),
		renderInvoice:         connect.NewClient[RenderInvoiceRequest, RenderInvoiceResponse](httpClient, baseURL+InvoiceServiceRenderInvoiceProcedure, opts...),
		recordPayment:         connect.NewClient[RecordPaymentRequest, RecordPaymentResponse](httpClient, baseURL+InvoiceServiceRecordPaymentProcedure, opts...),
		approvePayment:        connect.NewClient[ApprovePaymentRequest, ApprovePaymentResponse](httpClient, baseURL+InvoiceServiceApprovePaymentProcedure, opts...),
		revertLineItem:        connect.NewClient[RevertLineItemRequest, RevertLineItemResponse](httpClient, baseURL+InvoiceServiceRevertLineItemProcedure, opts...),
		exportFamilyGroups:    connect.NewClient[ExportFamilyGroupsRequest, ExportFamilyGroupsResponse](httpClient, baseURL+InvoiceServiceExportFamilyGroupsProcedure, opts...),
		saveTemplate:          connect.NewClient[SaveTemplateRequest, SaveTemplateResponse](httpClient, baseURL+TemplateServiceSaveTemplateProcedure, opts...),
		getTemplate:           connect.NewClient[GetTemplateRequest, GetTemplateResponse](httpClient, baseURL+TemplateServiceGetTemplateProcedure, opts...),
		requiredTokens:        connect.NewClient[RequiredTokensRequest, RequiredTokensResponse](httpClient, baseURL+TemplateServiceRequiredTokensProcedure, opts...),
		renderBulletin:        connect.NewClient[RenderBulletinRequest, RenderBulletinResponse](httpClient, baseURL+TemplateServiceRenderBulletinProcedure, opts...),
		getMembership:         connect.NewClient[GetMembershipRequest, MembershipResponse](httpClient, baseURL+MembershipServiceGetMembershipProcedure, opts...),
		addFamilyMember:       connect.NewClient[AddFamilyMemberRequest, MembershipResponse](httpClient, baseURL+MembershipServiceAddFamilyMemberProcedure, opts...),
		updateFamilyMember:    connect.NewClient[UpdateFamilyMemberRequest, MembershipResponse](httpClient, baseURL+MembershipServiceUpdateFamilyMemberProcedure, opts...),
		removeFamilyMember:    connect.NewClient[RemoveFamilyMemberRequest, MembershipResponse](httpClient, baseURL+MembershipServiceRemoveFamilyMemberProcedure, opts...),
		changePlan:            connect.NewClient[ChangePlanRequest, MembershipResponse](httpClient, baseURL+MembershipServiceChangePlanProcedure, opts...),
		renderMembershipSheet: connect.NewClient[RenderMembershipSheetRequest, RenderMembershipSheetResponse](httpClient, baseURL+MembershipServiceRenderMembershipSheetProcedure, opts...),
		sendCampaign:          connect.NewClient[SendCampaignRequest, SendCampaignResponse](httpClient, baseURL+CampaignServiceSendCampaignProcedure, opts...),
	}
}

func (c *Client) ListFamilyGroups(ctx context.Context, req *connect.Request[ListFamilyGroupsRequest]) (*connect.Response[ListFamilyGroupsResponse], error) {
	return c.listFamilyGroups.CallUnary(ctx, req)
}

func (c *Client) RenderInvoice(ctx context.Context, req *connect.Request[RenderInvoiceRequest]) (*connect.Response[RenderInvoiceResponse], error) {
	return c.renderInvoice.CallUnary(ctx, req)
}

func (c *Client) RecordPayment(ctx context.Context, req *connect.Request[RecordPaymentRequest]) (*connect.Response[RecordPaymentResponse], error) {
	return c.recordPayment.CallUnary(ctx, req)
}

func (c *Client) ApprovePayment(ctx context.Context, req *connect.Request[ApprovePaymentRequest]) (*connect.Response[ApprovePaymentResponse], error) {
	return c.approvePayment.CallUnary(ctx, req)
}

func (c *Client) RevertLineItem(ctx context.Context, req *connect.Request[RevertLineItemRequest]) (*connect.Response[RevertLineItemResponse], error) {
	return c.revertLineItem.CallUnary(ctx, req)
}

func (c *Client) ExportFamilyGroups(ctx context.Context, req *connect.Request[ExportFamilyGroupsRequest]) (*connect.Response[ExportFamilyGroupsResponse], error) {
	return c.exportFamilyGroups.CallUnary(ctx, req)
}

func (c *Client) SaveTemplate(ctx context.Context, req *connect.Request[SaveTemplateRequest]) (*connect.Response[SaveTemplateResponse], error) {
	return c.saveTemplate.CallUnary(ctx, req)
}

func (c *Client) GetTemplate(ctx context.Context, req *connect.Request[GetTemplateRequest]) (*connect.Response[GetTemplateResponse], error) {
	return c.getTemplate.CallUnary(ctx, req)
}

func (c *Client) RequiredTokens(ctx context.Context, req *connect.Request[RequiredTokensRequest]) (*connect.Response[RequiredTokensResponse], error) {
	return c.requiredTokens.CallUnary(ctx, req)
}

func (c *Client) RenderBulletin(ctx context.Context, req *connect.Request[RenderBulletinRequest]) (*connect.Response[RenderBulletinResponse], error) {
	return c.renderBulletin.CallUnary(ctx, req)
}

func (c *Client) GetMembership(ctx context.Context, req *connect.Request[GetMembershipRequest]) (*connect.Response[MembershipResponse], error) {
	return c.getMembership.CallUnary(ctx, req)
}

func (c *Client) AddFamilyMember(ctx context.Context, req *connect.Request[AddFamilyMemberRequest]) (*connect.Response[MembershipResponse], error) {
	return c.addFamilyMember.CallUnary(ctx, req)
}

func (c *Client) UpdateFamilyMember(ctx context.Context, req *connect.Request[UpdateFamilyMemberRequest]) (*connect.Response[MembershipResponse], error) {
	return c.updateFamilyMember.CallUnary(ctx, req)
}

func (c *Client) RemoveFamilyMember(ctx context.Context, req *connect.Request[RemoveFamilyMemberRequest]) (*connect.Response[MembershipResponse], error) {
	return c.removeFamilyMember.CallUnary(ctx, req)
}

func (c *Client) ChangePlan(ctx context.Context, req *connect.Request[ChangePlanRequest]) (*connect.Response[MembershipResponse], error) {
	return c.changePlan.CallUnary(ctx, req)
}

func (c *Client) RenderMembershipSheet(ctx context.Context, req *connect.Request[RenderMembershipSheetRequest]) (*connect.Response[RenderMembershipSheetResponse], error) {
	return c.renderMembershipSheet.CallUnary(ctx, req)
}

func (c *Client) SendCampaign(ctx context.Context, req *connect.Request[SendCampaignRequest]) (*connect.Response[SendCampaignResponse], error) {
	return c.sendCampaign.CallUnary(ctx, req)
}
